package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const NurseIDHeader = "X-Nurse-ID"

type contextKey string

const nurseIDKey contextKey = "nurse_id"

// WithNurseID returns ctx carrying the acting nurse.
func WithNurseID(ctx context.Context, nurseID string) context.Context {
	return context.WithValue(ctx, nurseIDKey, nurseID)
}

// NurseIDFromContext returns the acting nurse, or "" when none was given.
func NurseIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(nurseIDKey).(string)
	return id
}

// auditEntry describes one chart write.
type auditEntry struct {
	NurseID   string
	PatientID string
	Resource  string
	Action    string // create, update
	Method    string
	Path      string
	IPAddress string
	RequestID string
	Status    int
}

// Audit puts the X-Nurse-ID header on the request context and logs every
// write under /api/v1/patients/ once the handler has run.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			nurseID := strings.TrimSpace(req.Header.Get(NurseIDHeader))
			if nurseID != "" && len(nurseID) <= 64 {
				c.SetRequest(req.WithContext(WithNurseID(req.Context(), nurseID)))
			}

			err := next(c)

			if !isChartWrite(req.Method, req.URL.Path) {
				return err
			}
			entry := auditEntry{
				NurseID:   NurseIDFromContext(c.Request().Context()),
				Method:    req.Method,
				Path:      req.URL.Path,
				IPAddress: c.RealIP(),
				Status:    responseStatus(c, err),
			}
			entry.Action = methodToAction(req.Method)
			entry.PatientID, entry.Resource = splitPatientPath(req.URL.Path)
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			evt := logger.Info()
			if entry.NurseID == "" {
				evt = logger.Warn()
			}
			evt.
				Str("type", "chart_audit").
				Str("request_id", entry.RequestID).
				Str("nurse_id", entry.NurseID).
				Str("patient_id", entry.PatientID).
				Str("resource", entry.Resource).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.Status).
				Msg("chart_write")

			return err
		}
	}
}

func isChartWrite(method, path string) bool {
	if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
		return false
	}
	return strings.HasPrefix(path, "/api/v1/patients")
}

func methodToAction(method string) string {
	if method == http.MethodPost {
		return "create"
	}
	return "update"
}

// splitPatientPath parses /api/v1/patients/<id>/<resource>/...
//
//   - /api/v1/patients            -> "", "patients"
//   - /api/v1/patients/3/notes    -> "3", "notes"
//   - /api/v1/patients/3/handoff/entries -> "3", "handoff"
func splitPatientPath(path string) (patientID, resource string) {
	rest := strings.Trim(strings.TrimPrefix(path, "/api/v1/patients"), "/")
	if rest == "" {
		return "", "patients"
	}
	segs := strings.Split(rest, "/")
	if len(segs) == 1 {
		return segs[0], "patient"
	}
	return segs[0], segs[1]
}

func responseStatus(c echo.Context, err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if err != nil {
		return http.StatusInternalServerError
	}
	return c.Response().Status
}
