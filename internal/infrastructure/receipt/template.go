package receipt

import (
	"bytes"
	"html/template"
	"time"
)

// Document is the fully joined payment data a receipt is rendered from
type Document struct {
	ReceiptNumber string
	SchoolName    string
	StudentName   string
	StudentID     string
	ClassName     string
	YearLabel     string
	PaymentType   string
	AmountDue     string
	AmountPaid    string
	Status        string
	IsInstallment bool
	Notes         string
	PaymentDate   time.Time
	RecordedBy    string
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Receipt {{.ReceiptNumber}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 13px; color: #1a1a1a; margin: 24px; }
  .header { text-align: center; border-bottom: 2px solid #1a1a1a; padding-bottom: 12px; }
  .header h1 { margin: 0; font-size: 18px; }
  .header .number { font-size: 14px; color: #555; margin-top: 4px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  td { padding: 6px 4px; vertical-align: top; }
  td.label { width: 38%; color: #555; }
  .amounts { margin-top: 16px; border-top: 1px solid #ccc; padding-top: 8px; }
  .amounts .row { display: flex; justify-content: space-between; padding: 3px 0; }
  .status { margin-top: 12px; font-weight: bold; text-transform: uppercase; }
  .notes { margin-top: 16px; font-size: 12px; color: #555; }
  .footer { margin-top: 28px; font-size: 11px; color: #888; text-align: center; }
</style>
</head>
<body>
  <div class="header">
    <h1>{{.SchoolName}}</h1>
    <div class="number">Payment Receipt {{.ReceiptNumber}}</div>
  </div>
  <table>
    <tr><td class="label">Student</td><td>{{.StudentName}} ({{.StudentID}})</td></tr>
    <tr><td class="label">Class</td><td>{{.ClassName}}</td></tr>
    <tr><td class="label">Academic year</td><td>{{.YearLabel}}</td></tr>
    <tr><td class="label">Fee</td><td>{{.PaymentType}}{{if .IsInstallment}} (installment){{end}}</td></tr>
    <tr><td class="label">Date</td><td>{{.PaymentDate.Format "2006-01-02 15:04"}}</td></tr>
  </table>
  <div class="amounts">
    <div class="row"><span>Amount due</span><span>{{.AmountDue}}</span></div>
    <div class="row"><span>Amount paid</span><span>{{.AmountPaid}}</span></div>
  </div>
  <div class="status">Status: {{.Status}}</div>
  {{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
  <div class="footer">Recorded by {{.RecordedBy}}</div>
</body>
</html>`

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// RenderHTML renders the receipt document to an HTML page
func RenderHTML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
