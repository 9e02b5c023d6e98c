package validation

import (
	"errors"
	"testing"

	"colognehub/internal/domain"
)

type form struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Age      int    `json:"age" validate:"gte=0"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(form{Email: "nope", Username: "ab", Age: -1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := Fields(err)
	if !ok {
		t.Fatalf("expected field errors")
	}
	want := map[string]string{
		"email":    "email must be a valid email address",
		"username": "username must be at least 3 characters",
		"age":      "age must be 0 or more",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Fatalf("field %s: expected %q, got %q", k, v, fields[k])
		}
	}
	if err.Error() != "age must be 0 or more; email must be a valid email address; username must be at least 3 characters" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestStructValid(t *testing.T) {
	if err := Struct(form{Email: "a@b.co", Username: "abc"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestVar(t *testing.T) {
	err := Var("email", "bad", "required,email")
	fields, ok := Fields(err)
	if !ok || fields["email"] != "email must be a valid email address" {
		t.Fatalf("unexpected var error %v", err)
	}
	if Var("email", "a@b.co", "required,email") != nil {
		t.Fatalf("expected valid email")
	}
}
