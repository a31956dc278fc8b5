package handlers

import (
	"fmt"
	"time"

	"server/internal/quota"
)

// quotaDeniedMessage builds the user-facing explanation for a denied story
// request, in the request locale.
func quotaDeniedMessage(locale string, isPremium bool, d quota.Decision, now time.Time) string {
	if !isPremium {
		if locale == "en" {
			return fmt.Sprintf("You have used your %d free stories. Upgrade to premium to create up to %d stories per day.", quota.FreeLifetimeLimit, quota.PremiumDailyLimit)
		}
		return fmt.Sprintf("Ya usaste tus %d cuentos gratuitos. Pasa a premium para crear hasta %d cuentos por día.", quota.FreeLifetimeLimit, quota.PremiumDailyLimit)
	}
	wait := quota.FormatUntilReset(d.ResetAt, now)
	if locale == "en" {
		return fmt.Sprintf("You have reached today's limit of %d stories. More stories in %s.", quota.PremiumDailyLimit, wait)
	}
	return fmt.Sprintf("Alcanzaste el límite de %d cuentos por hoy. Más cuentos en %s.", quota.PremiumDailyLimit, wait)
}

func providerFailureMessage(locale string) string {
	if locale == "en" {
		return "We could not generate your story right now. Please try again in a few minutes. Your quota was not consumed."
	}
	return "No pudimos generar tu cuento en este momento. Inténtalo de nuevo en unos minutos. Tu cupo no fue consumido."
}
