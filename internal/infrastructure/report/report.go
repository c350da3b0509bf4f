// Package report renders task listings as downloadable files.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// Formats lists every format Render accepts.
var Formats = []string{FormatCSV, FormatJSON, FormatPDF}

// Output is a rendered report.
type Output struct {
	Body        []byte
	ContentType string
	Filename    string
}

var csvHeader = []string{"id", "title", "description", "status", "priority", "due_date", "assignee_id", "assignee_name", "assignee_email", "created_at", "updated_at"}

// Render writes tasks in the given format. generatedAt stamps the PDF header
// and the file name.
func Render(format string, tasks []*domain.Task, generatedAt time.Time) (*Output, error) {
	format = strings.ToLower(format)
	name := "tasks-" + generatedAt.UTC().Format("20060102-150405") + "." + format
	switch format {
	case FormatCSV:
		body, err := renderCSV(tasks)
		if err != nil {
			return nil, err
		}
		return &Output{Body: body, ContentType: "text/csv; charset=utf-8", Filename: name}, nil
	case FormatJSON:
		body, err := json.MarshalIndent(rows(tasks), "", "  ")
		if err != nil {
			return nil, err
		}
		return &Output{Body: body, ContentType: "application/json", Filename: name}, nil
	case FormatPDF:
		body, err := renderPDF(tasks, generatedAt)
		if err != nil {
			return nil, err
		}
		return &Output{Body: body, ContentType: "application/pdf", Filename: name}, nil
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

type row struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	DueDate       string `json:"dueDate,omitempty"`
	AssigneeID    string `json:"assigneeId,omitempty"`
	AssigneeName  string `json:"assigneeName,omitempty"`
	AssigneeEmail string `json:"assigneeEmail,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func rows(tasks []*domain.Task) []row {
	out := make([]row, 0, len(tasks))
	for _, t := range tasks {
		r := row{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			Priority:    string(t.Priority),
			CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if t.DueDate != nil {
			r.DueDate = t.DueDate.Format("2006-01-02")
		}
		if t.AssigneeID != nil {
			r.AssigneeID = strconv.FormatInt(*t.AssigneeID, 10)
		}
		if t.Assignee != nil {
			r.AssigneeName = t.Assignee.Name
			r.AssigneeEmail = t.Assignee.Email
		}
		out = append(out, r)
	}
	return out
}

func renderCSV(tasks []*domain.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write(csvHeader)
	for _, r := range rows(tasks) {
		_ = w.Write([]string{
			strconv.FormatInt(r.ID, 10), r.Title, r.Description, r.Status, r.Priority, r.DueDate,
			r.AssigneeID, r.AssigneeName, r.AssigneeEmail, r.CreatedAt, r.UpdatedAt,
		})
	}
	w.Flush()
	return b.Bytes(), w.Error()
}

func renderPDF(tasks []*domain.Task, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("Generated %s - %d tasks", generatedAt.UTC().Format(time.RFC1123), len(tasks)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, r := range rows(tasks) {
		assignee := "unassigned"
		if r.AssigneeName != "" {
			assignee = r.AssigneeName + " <" + r.AssigneeEmail + ">"
		}
		due := ""
		if r.DueDate != "" {
			due = " due " + r.DueDate
		}
		line := fmt.Sprintf("#%d [%s/%s] %s - %s%s", r.ID, r.Status, r.Priority, r.Title, assignee, due)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
