package checkout

import "storefront/kit"

// Error message constants for the checkout flow.
const (
	ErrMsgCartEmpty          = "Cart is empty"
	ErrMsgNotOpen            = "Checkout is not open"
	ErrMsgAlreadyComplete    = "Checkout is already complete"
	ErrMsgNotAtReview        = "Order can only be submitted from review"
	ErrMsgReviewNeedsSubmit  = "Review is completed by submitting the order"
	ErrMsgSubmitInProgress   = "Order submission already in progress"
	ErrMsgCheckoutReset      = "Checkout was reset while the order was processing"
	ErrMsgPaymentFailed      = "There was an error processing your payment. Please try again."
	ErrMsgUnknownField       = "Unknown checkout field"
	ErrMsgInvalidBool        = "Value must be true or false"
	ErrMsgInvalidMethod      = "Payment method must be card or paypal"
	ErrMsgShippingIncomplete = "Shipping details are incomplete"
	ErrMsgPaymentIncomplete  = "Payment details are incomplete"
)

// Field validation messages.
const (
	ErrMsgEmailRequired      = "Email is required"
	ErrMsgFirstNameRequired  = "First name is required"
	ErrMsgLastNameRequired   = "Last name is required"
	ErrMsgAddressRequired    = "Address is required"
	ErrMsgCityRequired       = "City is required"
	ErrMsgStateRequired      = "State is required"
	ErrMsgZipCodeRequired    = "ZIP code is required"
	ErrMsgPhoneRequired      = "Phone number is required"
	ErrMsgCardNumberRequired = "Card number is required"
	ErrMsgExpiryRequired     = "Expiry date is required"
	ErrMsgCVVRequired        = "CVV is required"
	ErrMsgCardNameRequired   = "Cardholder name is required"
)

// ErrSubmitInProgress is returned by Submit while an earlier submission
// has not completed.
var ErrSubmitInProgress = kit.NewFailedPrecondition(ErrMsgSubmitInProgress)
