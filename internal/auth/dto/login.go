package dto

// LoginInput identifies the user by full name or mobile number.
type LoginInput struct {
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

type LoginOutput struct {
	User         *UserOutput `json:"user"`
	AccessToken  string      `json:"-"`
	RefreshToken string      `json:"refreshToken"`
}
