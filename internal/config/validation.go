package config

import (
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ifnameRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.:-]*$`)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "required_if":
		return fmt.Sprintf("field is required when %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "ifname":
		return "must be a valid interface name (letters, digits, and _.:- after a leading letter)"
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // For interfaces: the interface name (e.g. "eth0")
	FieldPath string // Dot-notation field path (e.g. "general.tmpdir")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("ifname", validateIfname); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("hostport_or_empty", validateHostPortOrEmpty); err != nil {
		panic(err)
	}

	// Register function to get field name from "toml" tag
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateIfname(fl validator.FieldLevel) bool {
	return ifnameRegexp.MatchString(fl.Field().String())
}

func validateHostPortOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.SplitHostPort(value)
	return err == nil
}

// convertValidatorErrors converts validator.ValidationErrors into our error type.
func convertValidatorErrors(err error, pathPrefix, itemName string) ValidationErrors {
	var out ValidationErrors
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out = append(out, ValidationError{
				ItemName:  itemName,
				FieldPath: pathPrefix + "." + fe.Field(),
				Message:   getValidationMessage(fe),
			})
		}
	} else if err != nil {
		out = append(out, ValidationError{
			ItemName:  itemName,
			FieldPath: pathPrefix,
			Message:   err.Error(),
		})
	}
	return out
}

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}

	validationErrors = append(validationErrors, c.validateInterfaces()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateInterfaces() ValidationErrors {
	var validationErrors ValidationErrors

	seenNames := make(map[string]bool)

	for i, iface := range c.Interfaces {
		itemName := iface.Name
		if itemName == "" {
			itemName = fmt.Sprintf("interface[%d]", i)
		}

		if err := validate.Struct(iface); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("interface.%d", i), itemName)...)
		}

		switch iface.Type {
		case TechnologyEthernet, TechnologyWifi, TechnologyMobile:
		default:
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "type",
				Message:   fmt.Sprintf("unknown technology: %q", iface.Type),
			})
		}

		validationErrors = append(validationErrors, validateTechnologyFields(iface, itemName)...)

		if seenNames[iface.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate interface name: %s", iface.Name),
			})
		}
		seenNames[iface.Name] = true
	}

	return validationErrors
}

// validateTechnologyFields checks the technology-specific payload for the
// fields the compiler cannot do without.
func validateTechnologyFields(iface *InterfaceConfig, itemName string) ValidationErrors {
	var out ValidationErrors

	missing := func(field string) {
		out = append(out, ValidationError{
			ItemName:  itemName,
			FieldPath: field,
			Message:   fmt.Sprintf("field is required for %s interfaces", iface.Type),
		})
	}

	switch iface.Type {
	case TechnologyWifi:
		if iface.SSID == "" {
			missing("ssid")
		}
		if iface.RegulatoryDomain == "" {
			missing("regulatory_domain")
		}
	case TechnologyMobile:
		if iface.Device == "" {
			missing("device")
		}
		if iface.Speed == 0 {
			missing("speed")
		}
		if iface.ChatScript == "" {
			missing("chat_script")
		}
	}

	return out
}
