package pedagogy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cartable/internal/config"
	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var numericID = regexp.MustCompile(`^[0-9]+$`)

func validateProgression(req *services.ProgressionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTitleLength),
			validation.By(notBlank),
		),
	)
}

func validateCreateResource(req *services.CreateResourceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.TypeID, validation.Required, validation.Match(numericID), validation.By(fitsInt64)),
		validation.Field(&req.SubTypeID, validation.Required, validation.Match(numericID), validation.By(fitsInt64)),
		validation.Field(&req.SourceType,
			validation.Required,
			validation.In(pedagogy.SourceFile, pedagogy.SourceAI),
		),
		validation.Field(&req.SessionIDs, validation.Each(validation.Match(numericID), validation.By(fitsInt64))),
		validation.Field(&req.UserID, validation.Match(numericID), validation.By(fitsInt64)),
	)
}

func validateUpdateResource(req *services.UpdateResourceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.TypeID, validation.NilOrNotEmpty, validation.Match(numericID), validation.By(fitsInt64)),
		validation.Field(&req.SubTypeID, validation.NilOrNotEmpty, validation.Match(numericID), validation.By(fitsInt64)),
		validation.Field(&req.SessionIDs, validation.Each(validation.Match(numericID), validation.By(fitsInt64))),
	)
}

// notBlank rejects whitespace-only strings; nil pointers pass.
func notBlank(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

// fitsInt64 rejects ids the API cannot store; empty values and nil pointers
// are left to Required.
func fitsInt64(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return fmt.Errorf("must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("is out of range")
	}
	return nil
}

// toInt64 converts an id already checked by fitsInt64.
func toInt64(id string) int64 {
	n, _ := strconv.ParseInt(id, 10, 64)
	return n
}

func toInt64s(ids []string) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = toInt64(id)
	}
	return out
}

func optionalInt64(id *string) *int64 {
	if id == nil {
		return nil
	}
	n := toInt64(*id)
	return &n
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
