package checkout

// Step is a checkout stage.
type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
	StepComplete Step = "complete"
)

func (s Step) String() string {
	return string(s)
}

// forward is the Next table. Review advances only through Submit.
var forward = map[Step]Step{
	StepShipping: StepPayment,
	StepPayment:  StepReview,
}

// backward is the Back table. Steps without an entry stay put.
var backward = map[Step]Step{
	StepPayment: StepShipping,
	StepReview:  StepPayment,
}

// Progress is the completion percentage shown above the step tabs.
func (s Step) Progress() int {
	switch s {
	case StepShipping:
		return 33
	case StepPayment:
		return 66
	case StepReview, StepComplete:
		return 100
	}
	return 0
}
