package main

import (
	"os"
	"strconv"
)

func runScripts() {
	runCrons := os.Getenv("CRONS")
	if runCrons == "on" {
		go startCrons()
	}

	exportWhat := os.Getenv("EXPORT")
	if exportWhat == "all" {
		runAllExports(false)
	} else if exportWhat != "" {
		if _, err := exportEntityByName(exportWhat, false); err != nil {
			ErrorLog.Println("export script ERR! ", err)
		}
	}

	migrateWhat := os.Getenv("MIGRATE")
	if migrateWhat != "" {
		opts := MigrateOptions{}
		if migrateWhat != "all" {
			opts.Entities = []string{migrateWhat}
		}

		limit := os.Getenv("MIGRATELIMIT")
		if limit != "" {
			intLimit, _ := strconv.Atoi(limit)
			opts.Limit = intLimit
		}

		opts.DryRun = os.Getenv("DRYRUN") == "on"

		if _, err := runMigration(opts); err != nil {
			ErrorLog.Println("migrate script ERR! ", err)
		}
	}

	verify := os.Getenv("VERIFY")
	if verify == "on" {
		results, err := verifyMigration()
		if err != nil {
			ErrorLog.Println("verify script ERR! ", err)
		} else {
			for _, result := range results {
				InfoLog.Println("verify ", result.Entity, ": source=", result.SourceCount, " dest=", result.DestCount, " matches=", result.Matches)
			}
		}
	}

	compareCSV := os.Getenv("COMPAREUSERS")
	if compareCSV != "" {
		comparison, err := compareUsers(compareCSV)
		if err != nil {
			ErrorLog.Println("compare users script ERR! ", err)
		} else {
			if _, err := writeComparisonCSV(comparison); err != nil {
				ErrorLog.Println("comparison csv ERR! ", err)
			}
			InfoLog.Println("user comparison: missing=", len(comparison.Missing), " existing=", len(comparison.Existing), " extra=", len(comparison.Extra))
		}
	}

	testEmail := os.Getenv("TESTEMAIL")
	if testEmail != "" {
		sendTestEmail()
	}
}
