package notify

import "fmt"

// OTPMessage renders the delivery-confirmation code email.
func OTPMessage(to, code string, ttlMinutes int) Message {
	return Message{
		To:      to,
		Subject: "Your GlamSpot confirmation code",
		Text:    fmt.Sprintf("Your confirmation code is %s. It expires in %d minutes.", code, ttlMinutes),
		HTML: fmt.Sprintf(
			`<p>Your confirmation code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>`,
			code, ttlMinutes,
		),
	}
}

// OnboardingLinkMessage renders the payout-onboarding email sent to sellers
// whose connected account is not ready to receive transfers yet.
func OnboardingLinkMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Finish setting up your GlamSpot payouts",
		Text:    fmt.Sprintf("Complete your payout account so we can send your earnings: %s", link),
		HTML: fmt.Sprintf(
			`<p>Complete your payout account so we can send your earnings.</p><p><a href=%q>Finish onboarding</a></p>`,
			link,
		),
	}
}

// BookingRequestedMessage notifies a seller about a new pending booking.
func BookingRequestedMessage(to, serviceTitle, slotLabel string) Message {
	return Message{
		To:      to,
		Subject: "New booking request",
		Text:    fmt.Sprintf("You have a new booking request for %s (%s).", serviceTitle, slotLabel),
		HTML: fmt.Sprintf(
			`<p>You have a new booking request for <strong>%s</strong> (%s).</p>`,
			serviceTitle, slotLabel,
		),
	}
}
