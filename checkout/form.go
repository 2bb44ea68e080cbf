package checkout

import (
	"strconv"
	"strings"

	"storefront/kit"
)

// PaymentMethod selects how the order is paid.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPayPal PaymentMethod = "paypal"
)

// Form field names.
const (
	FieldEmail         = "email"
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldState         = "state"
	FieldZipCode       = "zipCode"
	FieldCountry       = "country"
	FieldPhone         = "phone"
	FieldPaymentMethod = "paymentMethod"
	FieldCardNumber    = "cardNumber"
	FieldExpiryDate    = "expiryDate"
	FieldCVV           = "cvv"
	FieldCardName      = "cardName"
	FieldSaveInfo      = "saveInfo"
	FieldNewsletter    = "newsletter"
)

// DefaultCountry is preselected on a fresh form.
const DefaultCountry = "US"

// Form holds contact, shipping and payment input plus per-field errors.
type Form struct {
	Email         string            `json:"email"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Address       string            `json:"address"`
	City          string            `json:"city"`
	State         string            `json:"state"`
	ZipCode       string            `json:"zipCode"`
	Country       string            `json:"country"`
	Phone         string            `json:"phone"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	CardNumber    string            `json:"cardNumber"`
	ExpiryDate    string            `json:"expiryDate"`
	CVV           string            `json:"cvv"`
	CardName      string            `json:"cardName"`
	SaveInfo      bool              `json:"saveInfo"`
	Newsletter    bool              `json:"newsletter"`
	Errors        map[string]string `json:"errors"`
}

// NewForm returns an empty form with the default country and card payment.
func NewForm() Form {
	return Form{
		Country:       DefaultCountry,
		PaymentMethod: PaymentCard,
		Errors:        map[string]string{},
	}
}

func (f *Form) stringField(field string) *string {
	switch field {
	case FieldEmail:
		return &f.Email
	case FieldFirstName:
		return &f.FirstName
	case FieldLastName:
		return &f.LastName
	case FieldAddress:
		return &f.Address
	case FieldCity:
		return &f.City
	case FieldState:
		return &f.State
	case FieldZipCode:
		return &f.ZipCode
	case FieldCountry:
		return &f.Country
	case FieldPhone:
		return &f.Phone
	case FieldCardNumber:
		return &f.CardNumber
	case FieldExpiryDate:
		return &f.ExpiryDate
	case FieldCVV:
		return &f.CVV
	case FieldCardName:
		return &f.CardName
	}
	return nil
}

// Set assigns a field from its text form and clears that field's error.
// Boolean fields take "true" or "false".
func (f *Form) Set(field, value string) error {
	if p := f.stringField(field); p != nil {
		*p = value
	} else {
		switch field {
		case FieldPaymentMethod:
			method := PaymentMethod(value)
			if err := kit.RequireOneOf(method, []PaymentMethod{PaymentCard, PaymentPayPal}, ErrMsgInvalidMethod); err != nil {
				return err
			}
			f.PaymentMethod = method
		case FieldSaveInfo, FieldNewsletter:
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return kit.NewInvalidArgumentf("%s: %s", field, ErrMsgInvalidBool)
			}
			if field == FieldSaveInfo {
				f.SaveInfo = b
			} else {
				f.Newsletter = b
			}
		default:
			return kit.NewInvalidArgumentf("%s: %s", ErrMsgUnknownField, field)
		}
	}
	delete(f.Errors, field)
	return nil
}

// Get returns the text form of a field.
func (f Form) Get(field string) (string, bool) {
	if p := f.stringField(field); p != nil {
		return *p, true
	}
	switch field {
	case FieldPaymentMethod:
		return string(f.PaymentMethod), true
	case FieldSaveInfo:
		return strconv.FormatBool(f.SaveInfo), true
	case FieldNewsletter:
		return strconv.FormatBool(f.Newsletter), true
	}
	return "", false
}

// clone copies the error map so callers cannot reach the flow's form.
func (f Form) clone() Form {
	errs := make(map[string]string, len(f.Errors))
	for k, v := range f.Errors {
		errs[k] = v
	}
	f.Errors = errs
	return f
}

type requirement struct {
	field   string
	message string
}

var shippingRequirements = []requirement{
	{FieldEmail, ErrMsgEmailRequired},
	{FieldFirstName, ErrMsgFirstNameRequired},
	{FieldLastName, ErrMsgLastNameRequired},
	{FieldAddress, ErrMsgAddressRequired},
	{FieldCity, ErrMsgCityRequired},
	{FieldState, ErrMsgStateRequired},
	{FieldZipCode, ErrMsgZipCodeRequired},
	{FieldPhone, ErrMsgPhoneRequired},
}

var cardRequirements = []requirement{
	{FieldCardNumber, ErrMsgCardNumberRequired},
	{FieldExpiryDate, ErrMsgExpiryRequired},
	{FieldCVV, ErrMsgCVVRequired},
	{FieldCardName, ErrMsgCardNameRequired},
}

func missing(f Form, reqs []requirement) map[string]string {
	errs := map[string]string{}
	for _, r := range reqs {
		if v, _ := f.Get(r.field); v == "" {
			errs[r.field] = r.message
		}
	}
	return errs
}

// ValidateShipping returns an error message per empty contact or address field.
func ValidateShipping(f Form) map[string]string {
	return missing(f, shippingRequirements)
}

// ValidatePayment returns an error message per empty card field. Non-card
// payment methods need no fields.
func ValidatePayment(f Form) map[string]string {
	if f.PaymentMethod != PaymentCard {
		return map[string]string{}
	}
	return missing(f, cardRequirements)
}

// applyErrors merges errs into the form, keeping unrelated errors.
func (f *Form) applyErrors(errs map[string]string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	for k, v := range errs {
		f.Errors[k] = v
	}
}
