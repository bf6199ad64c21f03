package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/focusbank/internal/constants"
	"github.com/julianstephens/focusbank/internal/models"
)

type GoalFormModel struct {
	Period        models.PeriodType
	Target        string
	EffectiveFrom string
}

// NewGoalForm asks for a period type, a target duration and a start date.
func NewGoalForm(fm *GoalFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.PeriodType]().
				Title("Period").
				Options(
					huh.NewOption("Daily", models.PeriodDaily),
					huh.NewOption("Weekly", models.PeriodWeekly),
					huh.NewOption("Monthly", models.PeriodMonthly),
				).
				Value(&fm.Period),
			huh.NewInput().
				Title("Target").
				Description("Seconds, or a duration such as 90m or 2h").
				Value(&fm.Target).
				Validate(ValidateTarget),
			huh.NewInput().
				Title("Effective from (YYYY-MM-DD)").
				Description("Leave empty for today").
				Value(&fm.EffectiveFrom).
				Validate(validateOptionalDate),
		),
	).WithTheme(huh.ThemeDracula())
}

// ValidateTarget accepts any positive duration ParseSeconds understands.
func ValidateTarget(s string) error {
	secs, err := ParseSeconds(s)
	if err != nil {
		return err
	}
	if secs <= 0 {
		return fmt.Errorf("target must be positive")
	}
	return nil
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return fmt.Errorf("expected YYYY-MM-DD")
	}
	return nil
}

type NicknameFormModel struct {
	Nickname string
}

// NewNicknameForm prompts for a nickname. check runs on submit so taken or
// malformed names are rejected inside the form.
func NewNicknameForm(fm *NicknameFormModel, check func(string) error) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nickname").
				Description(fmt.Sprintf("%d-%d letters, digits, Hangul or _", constants.NicknameMinLen, constants.NicknameMaxLen)).
				Value(&fm.Nickname).
				Validate(check),
		),
	).WithTheme(huh.ThemeDracula())
}
