package dto

type RegisterInput struct {
	FullName     string `json:"fullName"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobileNumber"`
}
