package apptype

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var personValidate *validator.Validate

func init() {
	personValidate = validator.New()
	personValidate.RegisterStructValidation(validateLifespan, Person{})
}

// validateLifespan rejects persons recorded as dying before they were born.
func validateLifespan(sl validator.StructLevel) {
	p := sl.Current().Interface().(Person)
	if p.Died != nil && *p.Died < p.Born {
		sl.ReportError(p.Died, "Died", "died", "gtebirth", strconv.Itoa(p.Born))
	}
}

// personNamespace scopes the ids derived for persons imported without one.
var personNamespace = uuid.MustParse("7d1c6f2e-4b8a-5c3d-9e0f-1a2b3c4d5e6f")

// DerivedID returns a stable id for a person that arrived without one, so
// re-importing the same name and birth year replaces rather than duplicates.
func DerivedID(name string, born int) string {
	return uuid.NewSHA1(personNamespace, []byte(name+"\x00"+strconv.Itoa(born))).String()
}

// Normalize trims the text fields and fills ID when it is empty.
func (p *Person) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.ID = strings.TrimSpace(p.ID)
	p.Region = strings.TrimSpace(p.Region)
	if p.ID == "" && p.Name != "" {
		p.ID = DerivedID(p.Name, p.Born)
	}
}

// Validate checks the ingestion rules for a person.
func (p Person) Validate() error {
	if err := personValidate.Struct(p); err != nil {
		return formatValidationError(p, err)
	}
	return nil
}

// ValidatePersons validates every person, reporting the index of the first failure.
func ValidatePersons(persons []Person) error {
	for i, p := range persons {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("person %d: %w", i, err)
		}
	}
	return nil
}

func formatValidationError(p Person, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	label := p.Name
	if label == "" {
		label = p.ID
	}
	return fmt.Errorf("invalid person %q: %s", label, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gtebirth":
		return fmt.Sprintf("%s must not be before born (%s)", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
