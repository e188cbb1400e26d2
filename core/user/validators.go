package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/wingscc/rollcall/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceText   = "password must not contain whitespace"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimText = "password cannot be similar to the username"
)

// CheckPasswordPolicy applies the password policy to pwd:
// - minLen: 8
// - no whitespace
// - no all numeric
// - no username similarity
func CheckPasswordPolicy(pwd, uname string) error {
	reportErr := func(text string) error {
		return core.NewFieldError("password", text)
	}

	if len(pwd) < pwdMinLen {
		return reportErr(pwdMinLenText)
	}
	var digitCount int
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return reportErr(pwdNoSpaceText)
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len([]rune(pwd)) {
		return reportErr(pwdNotAllNumText)
	}

	if uname != "" {
		ratio := difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(uname, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return reportErr(pwdAttrSimText)
		}
	}
	return nil
}
