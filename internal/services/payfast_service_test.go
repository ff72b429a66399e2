package services

import (
	"strings"
	"testing"
	"time"

	intconfig "buslines/internal/config"
	"buslines/internal/domain"
	"buslines/internal/domain/models"
)

func sandboxEnv() intconfig.PayFastEnv {
	return intconfig.PayFastEnv{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "testpassphrase",
		BaseURL:     "https://sandbox.payfast.co.za/eng/process",
		ReturnURL:   "http://localhost:3000/payment/return",
		CancelURL:   "http://localhost:3000/payment/cancel",
		NotifyURL:   "http://localhost:8080/api/payments/payfast/notify",
		Sandbox:     true,
	}
}

func testBookingAndDetail() (models.Booking, models.ScheduleDetail) {
	b := models.Booking{
		ID:               7,
		BookingReference: "FB722334",
		PassengerName:    "Thabo van der Merwe",
		PassengerEmail:   "thabo@example.com",
		PassengerPhone:   "+27 82 123 4567",
		TotalCents:       38000,
		DiscountType:     domain.DiscountStudent,
	}
	d := models.ScheduleDetail{
		RouteName:   "Polokwane - Pretoria",
		Origin:      "Polokwane",
		Destination: "Pretoria",
	}
	d.DepartureTime = time.Date(2025, 4, 2, 9, 20, 0, 0, time.Local)
	return b, d
}

func TestSignatureDeterministic(t *testing.T) {
	data := map[string]string{
		"merchant_id": "10000100",
		"amount":      "380.00",
		"item_name":   "Bus Ticket - Polokwane - Pretoria",
	}
	a := Signature(data, "pass")
	b := Signature(data, "pass")
	if a != b {
		t.Fatal("signature not deterministic")
	}
	if len(a) != 32 {
		t.Fatalf("signature length %d, want 32 hex chars", len(a))
	}
	if c := Signature(data, "other"); c == a {
		t.Fatal("passphrase must change the signature")
	}
	data["amount"] = "380.01"
	if c := Signature(data, "pass"); c == a {
		t.Fatal("field change must change the signature")
	}
}

func TestBuildPaymentForm(t *testing.T) {
	svc := PayFastService{Env: sandboxEnv()}
	b, d := testBookingAndDetail()

	form, err := svc.BuildPaymentForm(b, d)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}

	if form.ActionURL != svc.Env.BaseURL {
		t.Errorf("action url %q", form.ActionURL)
	}
	if form.PaymentID != "PF_FB722334_7" {
		t.Errorf("payment id %q", form.PaymentID)
	}
	if form.FormData["amount"] != "380.00" {
		t.Errorf("amount %q, want 380.00", form.FormData["amount"])
	}
	if form.FormData["custom_int1"] != "7" || form.FormData["custom_str1"] != "FB722334" {
		t.Errorf("correlation fields wrong: %q / %q", form.FormData["custom_int1"], form.FormData["custom_str1"])
	}
	if form.FormData["name_first"] != "Thabo" || form.FormData["name_last"] != "Merwe" {
		t.Errorf("name split %q / %q", form.FormData["name_first"], form.FormData["name_last"])
	}
	if strings.ContainsAny(form.FormData["cell_number"], " +") {
		t.Errorf("cell number not normalized: %q", form.FormData["cell_number"])
	}

	// The signed form must validate as its own notification.
	if err := svc.ValidateNotification(form.FormData); err != nil {
		t.Fatalf("self-validation failed: %v", err)
	}
}

func TestBuildPaymentFormRequiresCredentials(t *testing.T) {
	env := sandboxEnv()
	env.MerchantID = ""
	svc := PayFastService{Env: env}
	b, d := testBookingAndDetail()

	if _, err := svc.BuildPaymentForm(b, d); !domain.IsGatewaySetup(err) {
		t.Fatalf("want GatewaySetupError, got %v", err)
	}

	env = sandboxEnv()
	svc = PayFastService{Env: env}
	b.BookingReference = ""
	if _, err := svc.BuildPaymentForm(b, d); !domain.IsGatewaySetup(err) {
		t.Fatalf("want GatewaySetupError for missing reference, got %v", err)
	}
}

func TestValidateNotification(t *testing.T) {
	svc := PayFastService{Env: sandboxEnv()}

	post := map[string]string{
		"payment_status": "COMPLETE",
		"custom_int1":    "7",
		"custom_str1":    "FB722334",
		"amount_gross":   "380.00",
	}
	post["signature"] = Signature(post, svc.Env.Passphrase)

	if err := svc.ValidateNotification(post); err != nil {
		t.Fatalf("valid notification rejected: %v", err)
	}

	// Comparison is case-insensitive.
	post["signature"] = strings.ToUpper(post["signature"])
	if err := svc.ValidateNotification(post); err != nil {
		t.Fatalf("uppercase signature rejected: %v", err)
	}

	// Tampered amount must fail.
	post["amount_gross"] = "1.00"
	if err := svc.ValidateNotification(post); !domain.IsSignature(err) {
		t.Fatalf("tampered payload accepted, err=%v", err)
	}

	// Missing signature must fail.
	delete(post, "signature")
	if err := svc.ValidateNotification(post); !domain.IsSignature(err) {
		t.Fatalf("unsigned payload accepted, err=%v", err)
	}
}
