// validation.go - Request validation rules shared by the catalog and store forms
// The same rules guard the dashboard forms; they are enforced here again because
// clients are never trusted.

package handlers // Declares the package name

import ( // Import required packages
	"errors"       // errors.As on binding failures
	"fmt"          // Message formatting
	"reflect"      // Struct tags for field names
	"regexp"       // Character classes
	"strings"      // Separator checks
	"unicode/utf8" // Length in characters, not bytes

	"github.com/gin-gonic/gin"               // gin.H responses
	"github.com/gin-gonic/gin/binding"       // Gin's validator engine
	"github.com/go-playground/validator/v10" // Custom validation tags
)

var (
	catalogNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`) // letters, numbers, spaces
	slugPattern        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`) // letters, numbers, hyphens, underscores
)

// ImageInput - One uploaded image reference
type ImageInput struct {
	URL string `json:"url" binding:"required"`
}

func init() { // Register custom tags on gin's validator once per process
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
		_ = v.RegisterValidation("catname", validCatalogName)
		_ = v.RegisterValidation("slugurl", validSlug)
	}
}

// jsonTagName - Reports fields by their JSON name
func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func inLength(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 2 && n <= 50
}

// validCatalogName - 2..50 characters of letters, numbers and spaces
func validCatalogName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return inLength(s) && catalogNamePattern.MatchString(s)
}

// validSlug - 2..50 characters of letters, numbers, hyphens and underscores,
// with no two separators in a row ("a--b", "a_-b")
func validSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !inLength(s) || !slugPattern.MatchString(s) {
		return false
	}
	for _, pair := range []string{"--", "__", "-_", "_-"} {
		if strings.Contains(s, pair) {
			return false
		}
	}
	return true
}

// fieldMessages - Human readable messages for the custom and common tags
var fieldMessages = map[string]string{
	"catname":  "must be 2-50 characters: letters, numbers, and spaces only",
	"slugurl":  "must be 2-50 characters: letters, numbers, hyphens, and underscores, without consecutive hyphens or underscores",
	"required": "is required",
	"email":    "must be a valid email address",
	"len":      "must contain exactly one image",
	"oneof":    "is not an allowed value",
}

// bindingErrors - Turns a binding failure into {field: message}
func bindingErrors(err error) gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return gin.H{"error": "invalid request body"}
	}
	fields := gin.H{}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %q validation", fe.Tag())
		}
		fields[jsonField(fe)] = msg
	}
	return gin.H{"error": "validation failed", "fields": fields}
}

// jsonField - Path of the failing field in the request body ("image[0].url")
func jsonField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:] // drop the struct name
	}
	return ns
}
