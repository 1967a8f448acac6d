package request

import (
	"fmt"
	"strings"
)

type SignupSellerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignupSellerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	return validatePassword(r.Password)
}

type SignupPartnerRequest struct {
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Password            string   `json:"password"`
	ServiceableZipCodes []string `json:"serviceable_zip_codes"`
	MaxHandlingCapacity int      `json:"max_handling_capacity"`
}

func (r *SignupPartnerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if err := validatePassword(r.Password); err != nil {
		return err
	}
	if len(r.ServiceableZipCodes) == 0 {
		return fmt.Errorf("at least one serviceable zip code is required")
	}
	if r.MaxHandlingCapacity < 0 {
		return fmt.Errorf("max_handling_capacity cannot be negative")
	}
	return nil
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *TokenRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("email is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
