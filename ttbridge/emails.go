package main

import (
	"bytes"
	"errors"
	"html/template"
	"path/filepath"

	sendgrid "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var templates *template.Template

type sgEmailFields struct {
	From    *sgmail.Email
	To      []*sgmail.Email
	Cc      []*sgmail.Email
	Bcc     []*sgmail.Email
	Subject string
}

const (
	MIGRATION_SUMMARY_EMAIL_TEMPLATE     = "migration_summary.html"
	SERVICE_DISCONNECTION_ALERT_TEMPLATE = "service_disconnected_alert.html"
	TEST_EMAIL_TEMPLATE                  = "test_template.html"
)

func initEmailTemplates() {
	absPath := "/etc/ttbridge/templates/*"
	if !env.Production {
		absPath, _ = filepath.Abs("./ttbridge/templates/*")
	}

	templates = template.Must(template.ParseGlob(absPath))
}

type MigrationSummaryEmailBody struct {
	RunID     int64
	Status    string
	DryRun    bool
	Entities  []EntitySummary
	AnyFailed bool
}

type DisconnectAlertEmailBody struct {
	ServiceName string
	Description string
}

func sendTemplatedEmailSendGrid(emailInfo sgEmailFields, templateToUse string, templateData interface{}, categories ...string) error {
	temp := templates.Lookup(templateToUse)
	var tpl bytes.Buffer
	if err := temp.Execute(&tpl, templateData); err != nil {
		return errors.New("template execute err: " + err.Error())
	}
	htmlContent := tpl.String()

	m := sgmail.NewV3Mail()

	m.SetFrom(emailInfo.From)

	content := sgmail.NewContent("text/html", htmlContent)
	m.AddContent(content)

	personalization := sgmail.NewPersonalization()
	personalization.AddTos(emailInfo.To...)
	personalization.AddCCs(emailInfo.Cc...)
	personalization.AddBCCs(emailInfo.Bcc...)
	personalization.Subject = emailInfo.Subject

	m.AddPersonalizations(personalization)

	m.AddCategories(categories...)

	request := sendgrid.GetRequest(passwords.SG_EMAILER_PASSWORD, "/v3/mail/send", "https://api.sendgrid.com")
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(m)
	_, err := sendgrid.API(request)
	if err != nil {
		return errors.New("err SENDGRID API request: " + err.Error())
	}

	return nil
}

func sendMigrationSummaryEmail(run *MigrationRun, summaries []EntitySummary) {
	anyFailed := run.Status == RUN_FAILED

	subject := "Migration run finished"
	if anyFailed {
		subject = "Migration run finished WITH FAILURES"
	}

	emailInfo := sgEmailFields{
		From:    &sgmail.Email{Name: "TT Bridge", Address: passwords.NO_REPLY_EMAILER_ADDRESS},
		To:      []*sgmail.Email{{Address: passwords.ADMIN_NOTIFICATION_EMAIL_ADDRESS}},
		Subject: subject,
	}

	body := MigrationSummaryEmailBody{
		RunID:     run.ID,
		Status:    run.Status,
		DryRun:    run.DryRun,
		Entities:  summaries,
		AnyFailed: anyFailed,
	}

	if err := sendTemplatedEmailSendGrid(emailInfo, MIGRATION_SUMMARY_EMAIL_TEMPLATE, body, "migration"); err != nil {
		ErrorLog.Println("migration summary email err: ", err)
	}
}

func sendDisconnectAlertEmail(serviceName, description string) {
	emailInfo := sgEmailFields{
		From:    &sgmail.Email{Name: "TT Bridge", Address: passwords.NO_REPLY_EMAILER_ADDRESS},
		To:      []*sgmail.Email{{Address: passwords.ADMIN_NOTIFICATION_EMAIL_ADDRESS}},
		Subject: serviceName + " API is unreachable",
	}

	body := DisconnectAlertEmailBody{
		ServiceName: serviceName,
		Description: description,
	}

	if err := sendTemplatedEmailSendGrid(emailInfo, SERVICE_DISCONNECTION_ALERT_TEMPLATE, body, "alert"); err != nil {
		ErrorLog.Println("disconnect alert email err: ", err)
	}
}

func sendTestEmail() {
	emailInfo := sgEmailFields{
		From:    &sgmail.Email{Name: "TT Bridge", Address: passwords.NO_REPLY_EMAILER_ADDRESS},
		To:      []*sgmail.Email{{Address: passwords.ADMIN_NOTIFICATION_EMAIL_ADDRESS}},
		Subject: "ttbridge test email",
	}

	err := sendTemplatedEmailSendGrid(emailInfo, TEST_EMAIL_TEMPLATE, nil)
	if err != nil {
		ErrorLog.Println("test email err: ", err)
		return
	}

	InfoLog.Println("test email sent")
}
