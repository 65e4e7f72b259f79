package wallet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/jupwallet/internal/errors"
)

// MaxNameLength is the longest accepted wallet name, in characters.
const MaxNameLength = 100

// ValidateName rejects blank names and names longer than MaxNameLength.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", kerrors.ErrInvalidWalletName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name cannot exceed %d characters", kerrors.ErrInvalidWalletName, MaxNameLength)
	}
	return nil
}
