package web

// messages.go maps errors to user-friendly messages with codes for support
// reference. Users quote the code; support looks it up here.
//
// # Header Errors (HDR001-HDR099)
//
//	HDR001 - A required column is missing from the table header
//	HDR002 - The shape declaration does not fit the header rows
//	HDR003 - The header rows of the table are missing
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - The report has no table with the shape's name
//	TBL002 - Unknown shape key
//
// # Cell Errors (CELL001-CELL099)
//
//	CELL001 - A cell could not be read as the declared type
//	CELL002 - A required cell is empty
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File exceeds the size limit
//	FILE002 - File is not valid delimited text
//	FILE003 - Workbook has no such sheet
//	FILE004 - No file was sent
//	FILE005 - File has more rows than allowed
//	FILE006 - File format is not supported
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Saving is not configured
//	DB002 - Database connection failed
//	DB003 - Operation timed out
//
// # Server Errors (SRV001-SRV099)
//
//	SRV001 - Too many extractions are running
//
// # Default Error (ERR000)
//
// Sentinel errors are matched with errors.Is first. Errors from outside the
// module (pgx, net) are then matched case-insensitively by message pattern.
// The first match wins.

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/tablewrap/internal/grid"
	"github.com/JonMunkholm/tablewrap/internal/report"
	"github.com/JonMunkholm/tablewrap/internal/table"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Status  int    // HTTP status of the response
}

var (
	errUnknownShape      = errors.New("unknown shape")
	errNoFile            = errors.New("no file provided")
	errFileTooLarge      = errors.New("file too large")
	errSavingUnavailable = errors.New("saving is not configured")
)

type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages is ordered from specific to general.
var sentinelMessages = []sentinelMessage{
	{table.ErrColumnNotFound, UserMessage{
		Message: "A required column is missing from the table header",
		Action:  "Check that the report was exported with all columns",
		Code:    "HDR001",
		Status:  http.StatusUnprocessableEntity,
	}},
	{table.ErrHeaderConfig, UserMessage{
		Message: "The shape does not fit the header of this report",
		Action:  "Check the label row count of the shape",
		Code:    "HDR002",
		Status:  http.StatusUnprocessableEntity,
	}},
	{table.ErrHeaderRowAbsent, UserMessage{
		Message: "The table header rows are missing",
		Action:  "Make sure the header directly follows the table name",
		Code:    "HDR003",
		Status:  http.StatusUnprocessableEntity,
	}},
	{report.ErrTableNotFound, UserMessage{
		Message: "The report has no table for this shape",
		Action:  "Verify that you picked the right shape for the file",
		Code:    "TBL001",
		Status:  http.StatusUnprocessableEntity,
	}},
	{errUnknownShape, UserMessage{
		Message: "This report shape does not exist",
		Action:  "List the available shapes at /api/shapes",
		Code:    "TBL002",
		Status:  http.StatusNotFound,
	}},
	{table.ErrCellType, UserMessage{
		Message: "A cell has an unexpected format",
		Action:  "Check numbers and dates in the reported row",
		Code:    "CELL001",
		Status:  http.StatusUnprocessableEntity,
	}},
	{table.ErrCellAbsent, UserMessage{
		Message: "A required cell is empty",
		Action:  "Fill in the reported cell",
		Code:    "CELL002",
		Status:  http.StatusUnprocessableEntity,
	}},
	{errFileTooLarge, UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Export a shorter period or split the file",
		Code:    "FILE001",
		Status:  http.StatusRequestEntityTooLarge,
	}},
	{csv.ErrQuote, UserMessage{
		Message: "File is not valid delimited text",
		Action:  "Check quoting and the delimiter of the file",
		Code:    "FILE002",
		Status:  http.StatusBadRequest,
	}},
	{grid.ErrSheetNotFound, UserMessage{
		Message: "The workbook has no such sheet",
		Action:  "Check the sheet name or leave it empty for the first sheet",
		Code:    "FILE003",
		Status:  http.StatusBadRequest,
	}},
	{errNoFile, UserMessage{
		Message: "No file was sent",
		Action:  "Send the report as the request body or as form field \"file\"",
		Code:    "FILE004",
		Status:  http.StatusBadRequest,
	}},
	{grid.ErrTooManyRows, UserMessage{
		Message: "File has more rows than allowed",
		Action:  "Export a shorter period",
		Code:    "FILE005",
		Status:  http.StatusRequestEntityTooLarge,
	}},
	{grid.ErrUnsupportedFormat, UserMessage{
		Message: "File format is not supported",
		Action:  "Upload a .csv, .tsv or .xlsx file or pass format=csv|tsv|xlsx",
		Code:    "FILE006",
		Status:  http.StatusUnsupportedMediaType,
	}},
	{errSavingUnavailable, UserMessage{
		Message: "Saving records is not configured on this server",
		Action:  "Retry without save=true or ask an administrator to set DATABASE_URL",
		Code:    "DB001",
		Status:  http.StatusConflict,
	}},
	{errTooManyExtractions, UserMessage{
		Message: "The server is busy with other reports",
		Action:  "Wait a moment and try again",
		Code:    "SRV001",
		Status:  http.StatusServiceUnavailable,
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB002",
		Status:  http.StatusServiceUnavailable,
	}},
	{"parse error on line", UserMessage{
		Message: "File is not valid delimited text",
		Action:  "Check quoting and the delimiter of the file",
		Code:    "FILE002",
		Status:  http.StatusBadRequest,
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB003",
		Status:  http.StatusGatewayTimeout,
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB003",
		Status:  http.StatusGatewayTimeout,
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError returns the user message for err. A nil error maps to the zero message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		err = errFileTooLarge
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}
	return defaultMessage
}
