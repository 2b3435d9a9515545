package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/aither/internal/client/models"
)

const (
	PINLength          = 4
	DefaultDisplayName = "Usuário"
)

var (
	ErrEmptyEmail    = errors.New("email is required")
	ErrReservedEmail = errors.New("this address is reserved")
	ErrIncorrectPIN  = errors.New("incorrect PIN")
	ErrInvalidPIN    = errors.New("PIN accepts digits only")
	ErrPINLength     = errors.New("PIN must be 4 digits")
	ErrWrongStep     = errors.New("action not available at this step")
)

type AuthStep int

const (
	StepCollectEmail AuthStep = iota
	StepVerifyPIN
	StepSetupNewUser
	StepDone
)

func (s AuthStep) String() string {
	switch s {
	case StepCollectEmail:
		return "collectEmail"
	case StepVerifyPIN:
		return "verifyPin"
	case StepSetupNewUser:
		return "setupNewUser"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// ValidPIN reports whether pin is exactly PINLength ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// AuthFlow is a single login attempt. It never touches storage: a profile
// created in the setup step must be added to the registry by the caller.
//
// PINs are compared in plaintext and failed attempts are not limited.
type AuthFlow struct {
	users      []models.UserProfile
	ownerEmail string
	aiAvatar   string
	newID      func() string

	step    AuthStep
	email   string
	found   models.UserProfile
	digits  []byte
	result  models.UserProfile
	created bool
}

// NewAuthFlow starts an attempt against a snapshot of the registry. aiAvatar
// is the current global AI avatar, given to newly created profiles.
func NewAuthFlow(users []models.UserProfile, ownerEmail, aiAvatar string) *AuthFlow {
	return &AuthFlow{
		users:      users,
		ownerEmail: models.NormalizeEmail(ownerEmail),
		aiAvatar:   aiAvatar,
		newID:      uuid.NewString,
		step:       StepCollectEmail,
	}
}

func (f *AuthFlow) Step() AuthStep { return f.step }

// Email is the normalized address submitted in the first step.
func (f *AuthFlow) Email() string { return f.email }

// Entered is the number of PIN digits typed so far.
func (f *AuthFlow) Entered() int { return len(f.digits) }

func (f *AuthFlow) SubmitEmail(email string) error {
	if f.step != StepCollectEmail {
		return ErrWrongStep
	}
	email = models.NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}

	if u, ok := FindByEmail(f.users, email); ok {
		f.email = email
		f.found = u
		f.digits = f.digits[:0]
		f.step = StepVerifyPIN
		return nil
	}
	if email == f.ownerEmail {
		return ErrReservedEmail
	}

	f.email = email
	f.step = StepSetupNewUser
	return nil
}

// EnterDigit adds one PIN digit and submits once PINLength digits are present.
// done is true when the PIN matched. On mismatch the digits are cleared and
// ErrIncorrectPIN is returned.
func (f *AuthFlow) EnterDigit(d rune) (done bool, err error) {
	if f.step != StepVerifyPIN {
		return false, ErrWrongStep
	}
	if d < '0' || d > '9' {
		return false, ErrInvalidPIN
	}

	f.digits = append(f.digits, byte(d))
	if len(f.digits) < PINLength {
		return false, nil
	}

	entered := string(f.digits)
	f.digits = f.digits[:0]
	if entered != f.found.PIN {
		return false, ErrIncorrectPIN
	}

	f.result = f.found
	f.created = false
	f.step = StepDone
	return true, nil
}

// SubmitPIN enters a whole PIN at once, discarding any partial entry.
func (f *AuthFlow) SubmitPIN(pin string) (bool, error) {
	if f.step != StepVerifyPIN {
		return false, ErrWrongStep
	}
	if strings.IndexFunc(pin, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return false, ErrInvalidPIN
	}
	if len(pin) != PINLength {
		return false, ErrPINLength
	}

	f.digits = f.digits[:0]
	var (
		done bool
		err  error
	)
	for _, d := range pin {
		done, err = f.EnterDigit(d)
	}
	return done, err
}

// Back abandons PIN entry and returns to the email step.
func (f *AuthFlow) Back() error {
	if f.step != StepVerifyPIN && f.step != StepSetupNewUser {
		return ErrWrongStep
	}
	f.step = StepCollectEmail
	f.email = ""
	f.found = models.UserProfile{}
	f.digits = f.digits[:0]
	return nil
}

// SubmitSetup creates the profile for a first-time address.
func (f *AuthFlow) SubmitSetup(name, pin string) error {
	if f.step != StepSetupNewUser {
		return ErrWrongStep
	}
	if !ValidPIN(pin) {
		return ErrPINLength
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultDisplayName
	}

	f.result = models.UserProfile{
		ID:            f.newID(),
		Email:         f.email,
		DisplayName:   name,
		AIAvatar:      f.aiAvatar,
		PIN:           pin,
		SetupComplete: true,
		Role:          models.RoleMember,
	}
	f.created = true
	f.step = StepDone
	return nil
}

// Result returns the authenticated profile once the flow is done; created
// is true when the profile is new and still has to be stored.
func (f *AuthFlow) Result() (p models.UserProfile, created bool, ok bool) {
	if f.step != StepDone {
		return models.UserProfile{}, false, false
	}
	return f.result, f.created, true
}
