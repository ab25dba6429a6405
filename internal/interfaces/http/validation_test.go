package http

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nordiqua-api/internal/domain"
)

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "se esperaba ValidationError, llegó %v", err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestNewValidator_CompilaTodosLosEsquemas(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	for _, id := range []string{SchemaLogin, SchemaRegister, SchemaProfile, SchemaClient, SchemaInvoice, SchemaProductCreate, SchemaProductUpdate, SchemaRole} {
		assert.Contains(t, v.schemas, id)
	}
}

func TestValidate_Invoice(t *testing.T) {
	v := MustValidator()

	assert.NoError(t, v.Validate(SchemaInvoice, []byte(`{
		"clientId": "6f1c1f0e-6d8a-4d2e-9a57-1b2c3d4e5f60",
		"date": "2024-02-25",
		"dueDate": null,
		"amount": "1500.00",
		"status": "pending",
		"items": [{"description": "Développement", "quantity": 2, "price": "10.50"}]
	}`)))

	err := v.Validate(SchemaInvoice, []byte(`{"items":[{"description":"x","quantity":"abc","price":1}]}`))
	got := validationFields(t, err)
	assert.Contains(t, got, "clientId")
	assert.Contains(t, got, "items[0].quantity")

	err = v.Validate(SchemaInvoice, []byte(`{"clientId":"x","items":[{"description":"x","price":1}]}`))
	assert.Contains(t, validationFields(t, err), "items[0].quantity")

	err = v.Validate(SchemaInvoice, []byte(`{"clientId":"x","status":"draft","date":"25/02/2024"}`))
	assert.ElementsMatch(t, []string{"status", "date"}, validationFields(t, err))
}

func TestValidate_ImportesFueraDeRango(t *testing.T) {
	v := MustValidator()

	err := v.Validate(SchemaInvoice, []byte(`{"clientId":"x","amount":1e20}`))
	assert.Contains(t, validationFields(t, err), "amount")

	err = v.Validate(SchemaInvoice, []byte(`{"clientId":"x","amount":"1234567890123.00"}`))
	assert.Contains(t, validationFields(t, err), "amount")

	err = v.Validate(SchemaInvoice, []byte(`{"clientId":"x","items":[{"description":"x","quantity":1e10,"price":1e13}]}`))
	got := validationFields(t, err)
	assert.Contains(t, got, "items[0].quantity")
	assert.Contains(t, got, "items[0].price")

	err = v.Validate(SchemaProductCreate, []byte(`{"name":"Licence","type":"product","price":1e20}`))
	assert.Contains(t, validationFields(t, err), "price")

	assert.NoError(t, v.Validate(SchemaInvoice, []byte(`{"clientId":"x","amount":999999999999.99}`)))
}

func TestValidate_Register(t *testing.T) {
	v := MustValidator()
	err := v.Validate(SchemaRegister, []byte(`{"email":"a@b.fr","password":"abc"}`))
	assert.ElementsMatch(t, []string{"password", "name"}, validationFields(t, err))
}

func TestValidate_CuerpoVacioOMalFormado(t *testing.T) {
	v := MustValidator()
	assert.Equal(t, []string{"body"}, validationFields(t, v.Validate(SchemaLogin, nil)))
	assert.Equal(t, []string{"body"}, validationFields(t, v.Validate(SchemaLogin, []byte(`{"email":`))))
	assert.Equal(t, []string{"body"}, validationFields(t, v.Validate(SchemaLogin, []byte(`[]`))))
}

func TestValidate_EsquemaDesconocido(t *testing.T) {
	err := MustValidator().Validate("nope", []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}
