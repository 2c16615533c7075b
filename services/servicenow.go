package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campus-facilities-api/config"
)

// Department names repair tickets are routed to.
const (
	DeptIT          = "IT Department"
	DeptElectronics = "Electronics Department"
	DeptFurniture   = "Furniture Department"
	DeptGeneral     = "General Maintenance"
)

// NoReplySentinel is returned as latest_reply when a ticket has no comments.
const NoReplySentinel = "No reply yet"

// departmentRules are checked in order; the first matching set wins, so a
// description mentioning both wifi and a chair routes to IT.
var departmentRules = []struct {
	keywords   []string
	department string
}{
	{[]string{"wifi", "internet", "speed"}, DeptIT},
	{[]string{"light", "bulb", "wire", "switch"}, DeptElectronics},
	{[]string{"chair", "door", "door handle", "handle", "table", "desk", "bench"}, DeptFurniture},
}

// ClassifyDepartment routes a free-text fault description to a department.
// Total function: unknown descriptions fall through to general maintenance.
func ClassifyDepartment(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range departmentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.department
			}
		}
	}
	return DeptGeneral
}

// ClassifyPriority assigns ServiceNow impact/urgency from urgency keywords:
// "1"/"1" (high) for urgent or emergency, "2"/"2" (medium) otherwise.
func ClassifyPriority(description string) (impact, urgency string) {
	lower := strings.ToLower(description)
	if strings.Contains(lower, "urgent") || strings.Contains(lower, "emergency") {
		return "1", "1"
	}
	return "2", "2"
}

// TicketRequest is one repair request from a student.
type TicketRequest struct {
	StudentName   string `json:"student_name" binding:"required"`
	RollNumber    string `json:"roll_number" binding:"required"`
	RoomNumber    string `json:"room_number" binding:"required"`
	ContactNumber string `json:"contact_number" binding:"required"`
	Description   string `json:"description" binding:"required"`
}

// TicketResult identifies the created ticket and the routing decisions.
type TicketResult struct {
	TicketNumber     string `json:"ticket_number"`
	AssignmentGroup  string `json:"assignment_group"`
	Impact           string `json:"impact"`
	Urgency          string `json:"urgency"`
	ShortDescription string `json:"short_description"`
}

// TicketStatus is a read-only projection of the provider's current state.
type TicketStatus struct {
	TicketNumber     string `json:"ticket_number"`
	State            string `json:"state"`
	ShortDescription string `json:"short_description"`
	LatestReply      string `json:"latest_reply"`
}

// TicketSummary is one row from the per-student listing.
type TicketSummary struct {
	TicketNumber     string `json:"ticket_number"`
	State            string `json:"state"`
	ShortDescription string `json:"short_description"`
	AssignmentGroup  string `json:"assignment_group"`
}

// ServiceNowClient issues authenticated calls against the table API. One
// outbound call per operation, bounded timeout, no retries.
type ServiceNowClient struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

func NewServiceNowClient(cfg config.ServiceNowConfig) *ServiceNowClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServiceNowClient{
		baseURL:  cfg.TableAPIURL(),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: timeout},
	}
}

type tableResponse struct {
	Result []map[string]string `json:"result"`
}

type createResponse struct {
	Result map[string]string `json:"result"`
}

func (c *ServiceNowClient) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, &RemoteServiceError{Op: strings.ToLower(method), Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteServiceError{Op: strings.ToLower(method), Err: err}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &RemoteServiceError{Op: strings.ToLower(method), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteServiceError{Op: strings.ToLower(method), StatusCode: resp.StatusCode}
	}
	return buf.Bytes(), nil
}

// CreateRecord inserts one row into the table and returns the provider's
// view of it.
func (c *ServiceNowClient) CreateRecord(ctx context.Context, payload map[string]string) (map[string]string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, err
	}

	var parsed createResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &RemoteServiceError{Op: "post", Err: err}
	}
	return parsed.Result, nil
}

// GetTicket fetches a ticket by its number. Returns ErrNotFound when the
// provider reports no matching record, distinct from transport failures.
func (c *ServiceNowClient) GetTicket(ctx context.Context, ticketNumber string) (map[string]string, error) {
	query := url.Values{}
	query.Set("sysparm_query", "number="+ticketNumber)
	query.Set("sysparm_fields", "state,short_description,comments,number")
	query.Set("sysparm_display_value", "true")

	data, err := c.do(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var parsed tableResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &RemoteServiceError{Op: "get", Err: err}
	}
	if len(parsed.Result) == 0 {
		return nil, ErrNotFound
	}
	return parsed.Result[0], nil
}

// ListTickets returns all tickets matching the student filters.
func (c *ServiceNowClient) ListTickets(ctx context.Context, studentName, rollNumber string) ([]map[string]string, error) {
	var parts []string
	if studentName != "" {
		parts = append(parts, "student_name="+studentName)
	}
	if rollNumber != "" {
		parts = append(parts, "roll_number="+rollNumber)
	}

	query := url.Values{}
	query.Set("sysparm_query", strings.Join(parts, "^"))
	query.Set("sysparm_display_value", "true")

	data, err := c.do(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var parsed tableResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &RemoteServiceError{Op: "get", Err: err}
	}
	return parsed.Result, nil
}

// TicketService routes repair requests and queries their state.
type TicketService struct {
	client *ServiceNowClient
}

func NewTicketService(client *ServiceNowClient) *TicketService {
	return &TicketService{client: client}
}

// CreateTicket validates the request, decides department and priority from
// the description, and forwards the assembled payload to the provider.
func (s *TicketService) CreateTicket(ctx context.Context, req TicketRequest) (TicketResult, error) {
	if err := validateTicketRequest(req); err != nil {
		return TicketResult{}, err
	}

	department := ClassifyDepartment(req.Description)
	impact, urgency := ClassifyPriority(req.Description)
	shortDescription := fmt.Sprintf("Repair Request from %s (Room %s)", req.StudentName, req.RoomNumber)

	payload := map[string]string{
		"student_name":      req.StudentName,
		"roll_number":       req.RollNumber,
		"room_number":       req.RoomNumber,
		"contact_number":    req.ContactNumber,
		"short_description": shortDescription,
		"description":       req.Description,
		"assignment_group":  department,
		"impact":            impact,
		"urgency":           urgency,
	}

	record, err := s.client.CreateRecord(ctx, payload)
	if err != nil {
		return TicketResult{}, err
	}

	return TicketResult{
		TicketNumber:     record["number"],
		AssignmentGroup:  department,
		Impact:           impact,
		Urgency:          urgency,
		ShortDescription: shortDescription,
	}, nil
}

// GetTicketStatus looks up the current provider state of a ticket.
func (s *TicketService) GetTicketStatus(ctx context.Context, ticketNumber string) (TicketStatus, error) {
	if strings.TrimSpace(ticketNumber) == "" {
		return TicketStatus{}, &ValidationError{Field: "ticket_number", Reason: "must not be blank"}
	}

	record, err := s.client.GetTicket(ctx, ticketNumber)
	if err != nil {
		return TicketStatus{}, err
	}

	status := TicketStatus{
		TicketNumber:     ticketNumber,
		State:            record["state"],
		ShortDescription: record["short_description"],
		LatestReply:      record["comments"],
	}
	if status.State == "" {
		status.State = "Unknown"
	}
	if status.LatestReply == "" {
		status.LatestReply = NoReplySentinel
	}
	return status, nil
}

// GetTicketsByStudent lists a student's tickets by name and/or roll number.
func (s *TicketService) GetTicketsByStudent(ctx context.Context, studentName, rollNumber string) ([]TicketSummary, error) {
	if studentName == "" && rollNumber == "" {
		return nil, &ValidationError{Field: "student_name", Reason: "student_name or roll_number is required"}
	}

	records, err := s.client.ListTickets(ctx, studentName, rollNumber)
	if err != nil {
		return nil, err
	}

	summaries := make([]TicketSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, TicketSummary{
			TicketNumber:     rec["number"],
			State:            rec["state"],
			ShortDescription: rec["short_description"],
			AssignmentGroup:  rec["assignment_group"],
		})
	}
	return summaries, nil
}

func validateTicketRequest(req TicketRequest) error {
	fields := []struct {
		name  string
		value string
	}{
		{"student_name", req.StudentName},
		{"roll_number", req.RollNumber},
		{"room_number", req.RoomNumber},
		{"contact_number", req.ContactNumber},
		{"description", req.Description},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Reason: "must not be blank"}
		}
	}
	return nil
}
