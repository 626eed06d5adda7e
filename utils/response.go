package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// Every /api response uses the same envelope so clients never branch on
// shape: {success, data, message, errors}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Errors  []string    `json:"errors,omitempty"`
}

func JSONSuccess(ctx iris.Context, data interface{}) {
	ctx.JSON(Envelope{Success: true, Data: data})
}

func JSONMessage(ctx iris.Context, data interface{}, message string) {
	ctx.JSON(Envelope{Success: true, Data: data, Message: message})
}

func JSONError(ctx iris.Context, status int, message string, errs ...string) {
	ctx.StatusCode(status)
	ctx.JSON(Envelope{Success: false, Message: message, Errors: errs})
}

func CreateNotFound(ctx iris.Context) {
	JSONError(ctx, iris.StatusNotFound, "Resource not found")
}

func CreateInternalServerError(ctx iris.Context) {
	JSONError(ctx, iris.StatusInternalServerError, "Internal server error")
}

// HandleValidationErrors maps validator failures onto the envelope with one
// entry per failed field; non-validator errors become a generic bad request.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Field()+": failed on '"+e.Tag()+"'")
		}
		JSONError(ctx, iris.StatusBadRequest, "Validation failed", out...)
		return
	}
	JSONError(ctx, iris.StatusBadRequest, "Invalid request payload")
}
