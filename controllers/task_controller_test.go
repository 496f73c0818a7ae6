package controllers

import (
	"strings"
	"testing"

	"github.com/umshah583/quickway_backend/models"
)

func TestCustomerNotice(t *testing.T) {
	booking := &models.Booking{
		CustomerName:  "Sana",
		CustomerEmail: "sana@example.com",
	}

	subject, body, ok := customerNotice(booking, false)
	if !ok {
		t.Fatal("notice expected when customer email is set")
	}
	if !strings.Contains(subject, "started") || !strings.Contains(body, "Sana") {
		t.Errorf("start notice = %q / %q", subject, body)
	}

	subject, body, ok = customerNotice(booking, true)
	if !ok {
		t.Fatal("notice expected when customer email is set")
	}
	if !strings.Contains(subject, "done") || !strings.Contains(body, "completed") {
		t.Errorf("completion notice = %q / %q", subject, body)
	}

	if _, _, ok := customerNotice(&models.Booking{CustomerName: "Sana"}, true); ok {
		t.Error("no notice without a customer email")
	}
	if _, _, ok := customerNotice(nil, true); ok {
		t.Error("no notice for a nil booking")
	}
}
