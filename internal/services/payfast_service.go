package services

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	intconfig "buslines/internal/config"
	"buslines/internal/domain"
	"buslines/internal/domain/models"
	"buslines/internal/utils"
)

// PaymentForm is what the frontend posts to the gateway: the signed field map
// plus the process URL.
type PaymentForm struct {
	FormData  map[string]string `json:"form_data"`
	ActionURL string            `json:"action_url"`
	PaymentID string            `json:"payment_id"`
}

// PayFastService implements the gateway's form/signature protocol. The MD5
// construction is PayFast's wire contract, not a choice made here.
type PayFastService struct {
	Env       intconfig.PayFastEnv
	RequestID string
}

// Signature hashes all pairs sorted by key, query-escaped, joined as
// "key=value&", trailing ampersand stripped, passphrase appended when set.
func Signature(data map[string]string, passphrase string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(data[k]))
	}
	if passphrase != "" {
		sb.WriteString("&passphrase=")
		sb.WriteString(url.QueryEscape(passphrase))
	}

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// BuildPaymentForm assembles and signs the payment-initiation payload for a
// booking. custom_int1/custom_str1 carry the correlation ids the notification
// handler looks up later.
func (s PayFastService) BuildPaymentForm(b models.Booking, d models.ScheduleDetail) (PaymentForm, error) {
	if strings.TrimSpace(s.Env.MerchantID) == "" || strings.TrimSpace(s.Env.MerchantKey) == "" {
		return PaymentForm{}, domain.GatewaySetupError{Msg: "merchant credentials not configured"}
	}
	if b.BookingReference == "" {
		return PaymentForm{}, domain.GatewaySetupError{Msg: "booking has no reference"}
	}

	nameParts := strings.Fields(b.PassengerName)
	first := "Passenger"
	last := ""
	if len(nameParts) > 0 {
		first = nameParts[0]
	}
	if len(nameParts) > 1 {
		last = nameParts[len(nameParts)-1]
	}

	cell := strings.NewReplacer(" ", "", "+", "").Replace(b.PassengerPhone)

	data := map[string]string{
		"merchant_id":  s.Env.MerchantID,
		"merchant_key": s.Env.MerchantKey,
		"return_url":   s.Env.ReturnURL,
		"cancel_url":   s.Env.CancelURL,
		"notify_url":   s.Env.NotifyURL,

		"name_first":    first,
		"name_last":     last,
		"email_address": b.PassengerEmail,
		"cell_number":   cell,

		"amount":           utils.FormatRand(b.TotalCents),
		"item_name":        "Bus Ticket - " + d.RouteName,
		"item_description": fmt.Sprintf("Booking %s - %s to %s", b.BookingReference, d.Origin, d.Destination),

		"custom_int1": strconv.FormatInt(b.ID, 10),
		"custom_str1": b.BookingReference,
		"custom_str2": d.DepartureTime.Format("2006-01-02 15:04"),
		"custom_str3": string(b.DiscountType),

		"payment_method": "cc",
	}
	data["signature"] = Signature(data, s.Env.Passphrase)

	paymentID := fmt.Sprintf("PF_%s_%d", b.BookingReference, b.ID)
	utils.LogEvent(s.RequestID, "payfast", "build_form", "payment form created for booking "+b.BookingReference)

	return PaymentForm{
		FormData:  data,
		ActionURL: s.Env.BaseURL,
		PaymentID: paymentID,
	}, nil
}

// ValidateNotification recomputes the signature over every field except the
// signature itself; comparison is case-insensitive. No booking is touched on
// failure.
func (s PayFastService) ValidateNotification(post map[string]string) error {
	received := strings.TrimSpace(post["signature"])
	if received == "" {
		return domain.SignatureError{Msg: "notification has no signature"}
	}

	fields := make(map[string]string, len(post))
	for k, v := range post {
		if k == "signature" {
			continue
		}
		fields[k] = v
	}

	expected := Signature(fields, s.Env.Passphrase)
	if !strings.EqualFold(expected, received) {
		return domain.SignatureError{Msg: "signature mismatch"}
	}
	return nil
}
