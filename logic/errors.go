package logic

// Error message constants for the storefront state.
const (
	ErrMsgProductIDRequired = "Product ID is required"
	ErrMsgQuantityPositive  = "Quantity must be positive"
	ErrMsgOutOfStock        = "Product is out of stock"
	ErrMsgExceedsStock      = "Quantity exceeds available stock"
	ErrMsgSearchTermBlank   = "Search term is required"
	ErrMsgInvalidTheme      = "Theme must be light, dark or system"
	ErrMsgUnknownAction     = "Unknown action type"
	ErrMsgUnknownFilter     = "Unknown filter"
)
