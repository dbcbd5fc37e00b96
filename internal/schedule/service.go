package schedule

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"stockscan/internal/conflict"
	"stockscan/internal/logging"
	"stockscan/internal/services"
	"stockscan/internal/warehouse"
)

const dateLayout = "2006-01-02"

// Fallback is shown for failures the conflict interpreter does not cover.
const Fallback = "Could not update project dates."

// Updater is the API call used by the service.
type Updater interface {
	UpdateProjectDates(ctx context.Context, projectID int64, dates warehouse.ProjectDates) error
}

// Result is the outcome shown to the operator.
type Result struct {
	Updated bool
	Kind    services.Kind
	Message string
}

// Service updates project dates.
type Service struct {
	api    Updater
	logger *slog.Logger
}

// NewService wraps api.
func NewService(api Updater, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logging.NewComponentLogger(logger, "schedule")}
}

// ValidationError is a locally rejected field. Its message is safe to show.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap classifies the error as a validation failure.
func (e *ValidationError) Unwrap() error { return services.ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// Validate checks the request locally.
func Validate(projectID int64, dates warehouse.ProjectDates) error {
	if projectID < 0 {
		return invalid("project id must be non-negative")
	}
	if strings.TrimSpace(dates.Name) == "" {
		return invalid("project name is required")
	}
	start, err := time.Parse(dateLayout, strings.TrimSpace(dates.StartDate))
	if err != nil {
		return invalid("start date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(dates.EndDate))
	if err != nil {
		return invalid("end date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return invalid("end date is before start date")
	}
	return nil
}

// UpdateDates validates and sends the new dates. The returned error is
// non-nil only for local validation failures; server and network outcomes
// are described by Result.
func (s *Service) UpdateDates(ctx context.Context, projectID int64, dates warehouse.ProjectDates) (Result, error) {
	dates.Name = strings.TrimSpace(dates.Name)
	dates.ClientName = strings.TrimSpace(dates.ClientName)
	dates.StartDate = strings.TrimSpace(dates.StartDate)
	dates.EndDate = strings.TrimSpace(dates.EndDate)
	if err := Validate(projectID, dates); err != nil {
		return Result{Kind: services.KindValidation, Message: err.Error()}, err
	}

	err := s.api.UpdateProjectDates(ctx, projectID, dates)
	logger := logging.WithContext(ctx, s.logger).With(logging.Int64("project_id", projectID))
	if err == nil {
		logger.Info("project dates updated",
			logging.Event("project_dates_updated"),
			logging.String("start_date", dates.StartDate),
			logging.String("end_date", dates.EndDate),
		)
		return Result{Updated: true, Message: "project dates updated"}, nil
	}

	kind := services.Classify(err)
	result := Result{Kind: kind, Message: conflict.Interpret(err, Fallback)}
	switch kind {
	case services.KindNetwork:
		result.Message = "server unreachable; project dates not updated"
	case services.KindNotFound:
		result.Message = "project not found"
	case services.KindConflict:
	default:
		var apiErr *warehouse.APIError
		if errors.As(err, &apiErr) && apiErr.Text() != "" {
			result.Message = apiErr.Text()
		}
	}
	logging.WarnWithContext(logger, "project date update failed", "project_dates_failed",
		logging.String("kind", string(kind)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "resolve the listed crew or transport bookings and retry"),
		logging.String(logging.FieldImpact, "project keeps its previous dates"),
	)
	return result, nil
}
