package dispatch

import (
	"strings"

	"bizdash/internal/model"

	"go.uber.org/zap"
)

// Session and AppMeta actions are local. The persistence adapter picks the
// change up through its Store subscription.

func (d *Dispatcher) SignIn(session model.Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return &model.ValidationError{Field: "token", Reason: "must not be empty"}
	}
	if err := d.store.SetSession(session); err != nil {
		return err
	}
	d.logger.Info("signed in", zap.String("user_id", session.UserID))
	return nil
}

func (d *Dispatcher) SignOut() {
	d.store.ClearSession()
	d.logger.Info("signed out")
}

func (d *Dispatcher) SetLanguage(code string) (model.AppMeta, error) {
	code = strings.TrimSpace(code)
	return d.store.UpdateAppMeta(func(m *model.AppMeta) { m.Language = code })
}

func (d *Dispatcher) SetTheme(theme model.Theme) (model.AppMeta, error) {
	return d.store.UpdateAppMeta(func(m *model.AppMeta) { m.Theme = theme })
}

func (d *Dispatcher) SetLocale(locale string) (model.AppMeta, error) {
	locale = strings.TrimSpace(locale)
	return d.store.UpdateAppMeta(func(m *model.AppMeta) { m.Locale = locale })
}

func (d *Dispatcher) SetTimezone(tz string) (model.AppMeta, error) {
	tz = strings.TrimSpace(tz)
	return d.store.UpdateAppMeta(func(m *model.AppMeta) { m.Timezone = tz })
}

// MarkInitialized records that first-run setup has completed.
func (d *Dispatcher) MarkInitialized() (model.AppMeta, error) {
	return d.store.UpdateAppMeta(func(m *model.AppMeta) { m.Initialized = true })
}
