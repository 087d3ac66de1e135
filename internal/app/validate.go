package app

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	apperrors "github.com/mikeohgml-jpg/coaching-portal/internal/platform/errors"
)

const maxNameLen = 255

// finite reports whether v is neither NaN nor infinite. NaN passes every
// range comparison, so it is checked first.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ValidationError(field + " is required").WithField("field", field)
	}
	if len(name) > maxNameLen {
		return apperrors.ValidationError(fmt.Sprintf("%s exceeds %d characters", field, maxNameLen)).WithField("field", field)
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperrors.ValidationError(field+" must be in YYYY-MM-DD format").WithField("field", field)
	}
	return t, nil
}

// validateNewClient checks req and returns the normalized ledger input.
func validateNewClient(req NewClientRequest) (domain.NewClient, error) {
	if err := validateName("name", req.Name); err != nil {
		return domain.NewClient{}, err
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return domain.NewClient{}, apperrors.ValidationError("email must be a valid address").WithField("field", "email")
	}
	if strings.TrimSpace(req.PackageType) == "" {
		return domain.NewClient{}, apperrors.ValidationError("package type is required").WithField("field", "package_type")
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return domain.NewClient{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return domain.NewClient{}, err
	}
	if !end.After(start) {
		return domain.NewClient{}, apperrors.ValidationError("end date must be after start date").WithField("field", "end_date")
	}

	if !finite(req.AmountPaid) || req.AmountPaid <= 0 {
		return domain.NewClient{}, apperrors.ValidationError("amount paid must be greater than 0").WithField("field", "amount_paid")
	}

	method, err := domain.ParsePaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if err != nil {
		return domain.NewClient{}, apperrors.ValidationError(err.Error()).WithField("field", "payment_method")
	}

	return domain.NewClient{
		Name:          strings.TrimSpace(req.Name),
		Address:       strings.TrimSpace(req.Address),
		Contact:       strings.TrimSpace(req.Contact),
		Email:         addr.Address,
		PackageType:   strings.TrimSpace(req.PackageType),
		StartDate:     start.Format(domain.DateLayout),
		EndDate:       end.Format(domain.DateLayout),
		AmountPaid:    req.AmountPaid,
		PaymentMethod: method,
		Notes:         strings.TrimSpace(req.Notes),
	}, nil
}

func validateSession(req SessionRequest) error {
	if err := validateName("client_name", req.ClientName); err != nil {
		return err
	}
	if strings.TrimSpace(req.CoachingType) == "" {
		return apperrors.ValidationError("coaching type is required").WithField("field", "coaching_type")
	}
	if req.ParticipantCount <= 0 {
		return apperrors.ValidationError("participant count must be greater than 0").WithField("field", "participant_count")
	}
	if !finite(req.CoachingHours) || req.CoachingHours <= 0 {
		return apperrors.ValidationError("coaching hours must be greater than 0").WithField("field", "coaching_hours")
	}
	if !finite(req.AmountCollected) {
		return apperrors.ValidationError("amount collected must be a number").WithField("field", "amount_collected")
	}
	if req.AmountCollected < 0 {
		return apperrors.ValidationError("amount collected cannot be negative").WithField("field", "amount_collected")
	}
	if _, err := parseDate("session_date", req.SessionDate); err != nil {
		return err
	}
	if strings.TrimSpace(req.NewEndDate) != "" {
		if _, err := parseDate("new_end_date", req.NewEndDate); err != nil {
			return err
		}
	}
	return nil
}
