package service

import (
	"fmt"
	"html"
)

const dailyReportHTML = `<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #111827;">
    <h2 style="color: #1e40af;">Daily Construction Report</h2>
    <p><strong>Project:</strong> %s</p>
    <p><strong>Date:</strong> %s</p>
    <p><strong>Crew:</strong> %s</p>
    <p>The full report is attached as a PDF.</p>
    <p style="color: #6b7280; font-size: 12px;">This message was sent automatically by Railcore.</p>
  </body>
</html>`

// DailyReportEmailHTML builds the notification body for a daily report.
// reportDate is expected pre-formatted.
func DailyReportEmailHTML(projectName, reportDate, crew string) string {
	return fmt.Sprintf(dailyReportHTML, html.EscapeString(projectName), html.EscapeString(reportDate), html.EscapeString(crew))
}

// DailyReportSubject builds the subject line; an empty prefix means "Daily Report".
func DailyReportSubject(prefix, projectName, reportDate string) string {
	if prefix == "" {
		prefix = "Daily Report"
	}
	return fmt.Sprintf("%s - %s - %s", prefix, projectName, reportDate)
}
