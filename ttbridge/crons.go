package main

import (
	cron "gopkg.in/robfig/cron.v2"
)

func doNow() {
	probeVendorAPIs()
}

func startCrons() {
	if env.Production {
		go doNow()
	}

	c := cron.New()

	c.AddFunc("@every 30m", func() {
		runAllExports(true)
	})

	c.AddFunc("TZ=America/Los_Angeles 0 02 * * *", func() {
		runAllExports(false)
		if err := archiveSnapshots(); err != nil {
			ErrorLog.Println("nightly archive err: ", err)
		}
	})

	c.AddFunc("@every 10m", func() {
		probeVendorAPIs()
	})

	InfoLog.Println("starting crons")

	c.Start()
}
