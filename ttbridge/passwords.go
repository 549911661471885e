package main

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
)

type Passwords struct {
	ADMIN_KEY                        string `json:"admin_key"`
	PROD_DB_PW                       string `json:"prod_db_pw"`
	LOCAL_DB_PW                      string `json:"local_db_pw"`
	GREENHOUSE_API_KEY               string `json:"greenhouse_api_key"`
	TT_TOKEN                         string `json:"tt_token"`
	SG_EMAILER_PASSWORD              string `json:"sg_emailer_password"`
	NO_REPLY_EMAILER_ADDRESS         string `json:"no_reply_emailer_address"`
	ADMIN_NOTIFICATION_EMAIL_ADDRESS string `json:"admin_notification_email_address"`
	SNAPSHOT_BUCKET_NAME             string `json:"snapshot_bucket_name"`
}

var passwords Passwords

func loadPasswords() {
	absPath := "/etc/ttbridge/config/passwords.json"
	if !env.Production {
		absPath, _ = filepath.Abs("./ttbridge/config/passwords.json")
	}

	raw, err := ioutil.ReadFile(absPath)
	if err != nil {
		ErrorLog.Println(err)
		panic("FAILED to open password json: " + err.Error())
	}

	err = json.Unmarshal(raw, &passwords)
	if err != nil {
		ErrorLog.Println(err)
		panic("FAILED Unmarshal password json: " + err.Error())
	}
}
