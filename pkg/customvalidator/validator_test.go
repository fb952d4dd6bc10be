package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ruleSample struct {
	Status   string `validate:"required,request_status"`
	Priority string `validate:"required,priority"`
	Role     string `validate:"omitempty,role"`
	Phone    string `validate:"required,phone"`
}

func TestRegisterCustomValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))

	ok := ruleSample{Status: "waiting-driver-update", Priority: "urgent", Role: "driver", Phone: "+91 98765 43210"}
	assert.NoError(t, v.Struct(ok))

	tests := []struct {
		name  string
		mut   func(p *ruleSample)
		field string
	}{
		{"unknown status", func(p *ruleSample) { p.Status = "closed" }, "Status"},
		{"synthetic filter is not a status", func(p *ruleSample) { p.Status = "awaiting-driver" }, "Status"},
		{"unknown priority", func(p *ruleSample) { p.Priority = "critical" }, "Priority"},
		{"unknown role", func(p *ruleSample) { p.Role = "admin" }, "Role"},
		{"letters in phone", func(p *ruleSample) { p.Phone = "call me" }, "Phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ok
			tt.mut(&p)
			err := v.Struct(p)
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}
