package checkout

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty")

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
)

// Form is what the shopper fills in on the checkout page.
type Form struct {
	FullName      string        `json:"fullName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	Note          string        `json:"note,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// ValidationError maps form fields to what is wrong with them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

func (f Form) normalized() Form {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.Note = strings.TrimSpace(f.Note)
	return f
}

// Validate returns a *ValidationError listing every invalid field.
func (f Form) Validate() error {
	f = f.normalized()
	fields := map[string]string{}

	if f.FullName == "" {
		fields["fullName"] = "required"
	}
	if f.Email == "" {
		fields["email"] = "required"
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		fields["email"] = "invalid email address"
	}
	if f.Phone == "" {
		fields["phone"] = "required"
	} else if !validPhone(f.Phone) {
		fields["phone"] = "invalid phone number"
	}
	if f.Address == "" {
		fields["address"] = "required"
	}
	switch f.PaymentMethod {
	case PaymentCOD, PaymentBankTransfer:
	default:
		fields["paymentMethod"] = "must be cod or bank-transfer"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validPhone accepts 9 to 15 digits with an optional leading '+'; spaces,
// dots and dashes are ignored.
func validPhone(s string) bool {
	s = strings.TrimPrefix(s, "+")
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return digits >= 9 && digits <= 15
}

// Draft is an order ready to be handed to the external order endpoint.
// Nothing has been charged.
type Draft struct {
	ID        uuid.UUID       `json:"id"`
	Items     []cart.LineItem `json:"items"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	Form      Form            `json:"form"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Builder struct {
	now   func() time.Time
	newID func() uuid.UUID
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now, newID: uuid.New}
}

// WithClock replaces the time source.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the form against the cart contents and returns a draft.
func (b *Builder) Build(form Form, items []cart.LineItem) (Draft, error) {
	if len(items) == 0 {
		return Draft{}, ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		return Draft{}, err
	}

	total := decimal.Zero
	count := 0
	for _, it := range items {
		total = total.Add(it.Subtotal())
		count += it.Quantity
	}

	return Draft{
		ID:        b.newID(),
		Items:     append([]cart.LineItem(nil), items...),
		Count:     count,
		Total:     total,
		Form:      form.normalized(),
		CreatedAt: b.now().UTC(),
	}, nil
}
