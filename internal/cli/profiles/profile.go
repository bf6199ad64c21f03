package profiles

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/constants"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/profiles"
)

type UserCmd struct {
	Register UserRegisterCmd `cmd:"" help:"Register an anonymous identity, minting one when no id is given."`
}

type UserRegisterCmd struct {
	ID string `arg:"" optional:"" help:"Identifier to register. A new UUID is generated when omitted."`
}

func (c *UserRegisterCmd) Run(ctx *cli.Context) error {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		id = profiles.NewAnonID()
	}

	profile, created, err := ctx.Profiles.RegisterUser(context.Background(), id)
	if err != nil {
		return err
	}

	out := struct {
		*models.Profile
		Created bool `json:"created"`
	}{profile, created}

	return ctx.Render(out, func(w io.Writer) {
		if created {
			fmt.Fprintf(w, "✓ Registered %s\n", cli.ValueStyle.Render(profile.AnonID))
		} else {
			fmt.Fprintf(w, "%s is already registered\n", profile.AnonID)
		}
		fmt.Fprintf(w, "  export %s=%s\n", "FOCUSBANK_USER", profile.AnonID)
	})
}

type ProfileCmd struct {
	Show     ProfileShowCmd     `cmd:"" help:"Show a profile."`
	Nickname ProfileNicknameCmd `cmd:"" help:"Claim or change the nickname shown on leaderboards."`
	Check    ProfileCheckCmd    `cmd:"" help:"Check whether a nickname is available."`
}

type ProfileShowCmd struct {
	User string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	profile, err := ctx.Profiles.GetProfile(context.Background(), c.User)
	if err != nil {
		return err
	}
	if profile == nil {
		return apperrors.Wrap(apperrors.ErrUnknownUser, fmt.Errorf("user %s is not registered", c.User))
	}

	return ctx.Render(profile, func(w io.Writer) {
		handle := profile.Handle()
		if handle == "" {
			handle = "(no nickname)"
		}
		fmt.Fprintln(w, cli.HeaderStyle.Render(handle))
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("User:      "), profile.AnonID)
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("Registered:"), cli.FormatTime(profile.CreatedAt, ctx.Resolver.Location()))
	})
}

type ProfileNicknameCmd struct {
	User        string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
	Nickname    string `arg:"" optional:"" help:"New nickname."`
	Interactive bool   `short:"i" help:"Prompt for the nickname."`
}

func (c *ProfileNicknameCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	if c.Interactive {
		fm := &cli.NicknameFormModel{Nickname: c.Nickname}
		form := cli.NewNicknameForm(fm, func(s string) error {
			check, err := ctx.Profiles.CheckNickname(bg, s)
			if err != nil {
				return err
			}
			if check.Available {
				return nil
			}
			// Keeping your own nickname is allowed
			if own, _ := ctx.Profiles.GetProfile(bg, c.User); own != nil && own.Nickname != nil && *own.Nickname == check.Nickname {
				return nil
			}
			return fmt.Errorf("nickname is %s", check.Reason)
		})
		if err := form.Run(); err != nil {
			return fmt.Errorf("nickname prompt cancelled: %w", err)
		}
		c.Nickname = fm.Nickname
	}
	if strings.TrimSpace(c.Nickname) == "" {
		return apperrors.Validation("nickname is required (or use --interactive)")
	}

	profile, err := ctx.Profiles.SetNickname(bg, c.User, c.Nickname)
	if err != nil {
		return err
	}

	return ctx.Render(profile, func(w io.Writer) {
		fmt.Fprintf(w, "✓ You appear as %s\n", cli.ValueStyle.Render(profile.Handle()))
	})
}

type ProfileCheckCmd struct {
	Nickname string `arg:"" help:"Nickname to look up."`
}

func (c *ProfileCheckCmd) Run(ctx *cli.Context) error {
	check, err := ctx.Profiles.CheckNickname(context.Background(), c.Nickname)
	if err != nil {
		return err
	}

	return ctx.Render(check, func(w io.Writer) {
		switch {
		case check.Available:
			fmt.Fprintf(w, "%s %q is available\n", cli.OKStyle.Render("✓"), check.Nickname)
		case check.Reason == constants.ReasonInvalidFormat:
			fmt.Fprintf(w, "%s %q is not a valid nickname (%d-%d letters, digits, Hangul or _)\n",
				cli.WarnStyle.Render("✗"), check.Nickname, constants.NicknameMinLen, constants.NicknameMaxLen)
		default:
			fmt.Fprintf(w, "%s %q is already taken\n", cli.WarnStyle.Render("✗"), check.Nickname)
		}
	})
}
