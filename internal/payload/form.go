// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payload

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidField is returned by FromForm when a date or time field holds a
// value that cannot be parsed.
var ErrInvalidField = errors.New("invalid field value")

// Input types understood by the studio form.
const (
	InputText     = "text"
	InputTextArea = "textarea"
	InputPassword = "password"
	InputSelect   = "select"
	InputCheckbox = "checkbox"
	InputDate     = "date"
	InputTime     = "time"
)

// Form date and time layouts, matching the HTML date and time inputs.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Field describes a single form input for a content kind.
type Field struct {
	Name    string
	Label   string
	Input   string
	Options []string // only for InputSelect
}

var kindFields = map[Kind][]Field{
	KindPlainText: {
		{Name: "text", Label: "Enter your text", Input: InputTextArea},
	},
	KindURL: {
		{Name: "url", Label: "Enter the URL", Input: InputText},
	},
	KindWiFi: {
		{Name: "ssid", Label: "WiFi SSID (name)", Input: InputText},
		{Name: "password", Label: "WiFi Password", Input: InputPassword},
		{Name: "security", Label: "Security", Input: InputSelect, Options: SecurityModes},
		{Name: "hidden", Label: "Hidden network?", Input: InputCheckbox},
	},
	KindVCard: {
		{Name: "name", Label: "Full Name", Input: InputText},
		{Name: "phone", Label: "Phone Number", Input: InputText},
		{Name: "email", Label: "Email", Input: InputText},
		{Name: "org", Label: "Organization", Input: InputText},
		{Name: "url", Label: "Website", Input: InputText},
	},
	KindWhatsApp: {
		{Name: "phone", Label: "Recipient Phone Number (with country code)", Input: InputText},
		{Name: "message", Label: "Message", Input: InputTextArea},
	},
	KindInstagram: {
		{Name: "username", Label: "Instagram Username", Input: InputText},
	},
	KindLinkedIn: {
		{Name: "profile_url", Label: "LinkedIn Profile URL", Input: InputText},
	},
	KindSnapchat: {
		{Name: "username", Label: "Snapchat Username", Input: InputText},
	},
	KindSMS: {
		{Name: "phone", Label: "Phone Number", Input: InputText},
		{Name: "message", Label: "SMS Message", Input: InputTextArea},
	},
	KindEvent: {
		{Name: "name", Label: "Event Name", Input: InputText},
		{Name: "date", Label: "Date", Input: InputDate},
		{Name: "start", Label: "Start Time", Input: InputTime},
		{Name: "end", Label: "End Time", Input: InputTime},
		{Name: "details", Label: "Details", Input: InputTextArea},
		{Name: "venue", Label: "Venue", Input: InputText},
	},
}

// Fields returns the form inputs for the kind, in display order.
func (k Kind) Fields() []Field {
	return kindFields[k]
}

// FromForm builds the content variant for kind from submitted form values.
// Missing text fields become empty strings. An unknown WiFi security mode
// falls back to WPA. Blank event date and times default to now, matching the
// date and time pickers which are never empty.
func FromForm(kind Kind, values url.Values, now time.Time) (Content, error) {
	get := func(name string) string { return values.Get(name) }

	switch kind {
	case KindPlainText:
		return PlainText{Text: get("text")}, nil
	case KindURL:
		return URL{URL: get("url")}, nil
	case KindWiFi:
		return WiFi{
			SSID:     get("ssid"),
			Password: get("password"),
			Security: normalizeSecurity(get("security")),
			Hidden:   parseCheckbox(get("hidden")),
		}, nil
	case KindVCard:
		return VCard{
			Name:  get("name"),
			Phone: get("phone"),
			Email: get("email"),
			Org:   get("org"),
			URL:   get("url"),
		}, nil
	case KindWhatsApp:
		return WhatsApp{Phone: get("phone"), Message: get("message")}, nil
	case KindInstagram:
		return Instagram{Username: get("username")}, nil
	case KindLinkedIn:
		return LinkedIn{ProfileURL: get("profile_url")}, nil
	case KindSnapchat:
		return Snapchat{Username: get("username")}, nil
	case KindSMS:
		return SMS{Phone: get("phone"), Message: get("message")}, nil
	case KindEvent:
		date, err := parseOr(get("date"), DateLayout, now)
		if err != nil {
			return nil, fmt.Errorf("%w: date: %v", ErrInvalidField, err)
		}
		start, err := parseOr(get("start"), TimeLayout, now)
		if err != nil {
			return nil, fmt.Errorf("%w: start: %v", ErrInvalidField, err)
		}
		end, err := parseOr(get("end"), TimeLayout, now)
		if err != nil {
			return nil, fmt.Errorf("%w: end: %v", ErrInvalidField, err)
		}
		return Event{
			Name:    get("name"),
			Date:    date,
			Start:   start,
			End:     end,
			Details: get("details"),
			Venue:   get("venue"),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}

func normalizeSecurity(s string) string {
	for _, m := range SecurityModes {
		if strings.EqualFold(s, m) {
			return m
		}
	}
	return SecurityWPA
}

func parseCheckbox(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// parseOr parses s with layout, returning fallback when s is blank. Time
// values also accept seconds ("15:04:05").
func parseOr(s, layout string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(layout, s)
	if err != nil && layout == TimeLayout {
		t, err = time.Parse("15:04:05", s)
	}
	return t, err
}
