// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payload

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a kind string does not name a supported
// content kind.
var ErrUnknownKind = errors.New("unknown content kind")

// Kind identifies one of the supported content kinds.
type Kind string

// Supported content kinds, in the order they appear in the kind selector.
const (
	KindPlainText Kind = "plain_text"
	KindURL       Kind = "url"
	KindWiFi      Kind = "wifi"
	KindVCard     Kind = "vcard"
	KindWhatsApp  Kind = "whatsapp"
	KindInstagram Kind = "instagram"
	KindLinkedIn  Kind = "linkedin"
	KindSnapchat  Kind = "snapchat"
	KindSMS       Kind = "sms"
	KindEvent     Kind = "event"
)

var allKinds = []Kind{
	KindPlainText, KindURL, KindWiFi, KindVCard, KindWhatsApp,
	KindInstagram, KindLinkedIn, KindSnapchat, KindSMS, KindEvent,
}

var kindLabels = map[Kind]string{
	KindPlainText: "Plain Text",
	KindURL:       "URL",
	KindWiFi:      "WiFi Network",
	KindVCard:     "vCard (Business Card)",
	KindWhatsApp:  "WhatsApp",
	KindInstagram: "Instagram",
	KindLinkedIn:  "LinkedIn",
	KindSnapchat:  "Snapchat",
	KindSMS:       "SMS",
	KindEvent:     "Event",
}

// Kinds returns every supported kind in selector order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind resolves a kind identifier. Matching is case-insensitive and
// accepts dashes in place of underscores ("plain-text").
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := kindLabels[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Label returns the human-readable name shown in the selector.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}
