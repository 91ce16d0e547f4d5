// internal/models/profile.go
package models

// ProfileInput is an applicant profile as received from a caller. Pointer
// fields distinguish an absent value from a zero value.
type ProfileInput struct {
	State        *string  `json:"state" validate:"required,notblank"`
	Age          *int     `json:"age" validate:"required,min=0,max=120"`
	AnnualIncome *float64 `json:"annualIncome" validate:"required,min=0"`
	Category     *string  `json:"category" validate:"required,notblank"`
	Gender       string   `json:"gender,omitempty" validate:"omitempty,oneof=Male Female Other"`
}

// Profile is a validated applicant profile.
type Profile struct {
	State        string  `json:"state"`
	Age          int     `json:"age"`
	AnnualIncome float64 `json:"annualIncome"`
	Category     string  `json:"category"`
	Gender       string  `json:"gender,omitempty"`
}

// Input converts a validated profile back into its input form.
func (p Profile) Input() ProfileInput {
	state, age, income, category := p.State, p.Age, p.AnnualIncome, p.Category
	return ProfileInput{
		State:        &state,
		Age:          &age,
		AnnualIncome: &income,
		Category:     &category,
		Gender:       p.Gender,
	}
}
