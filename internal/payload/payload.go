// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package payload turns a content request into the text string that gets
// encoded into a QR code. Each content kind has its own struct carrying
// exactly the fields it needs, and Format maps every variant to a fixed
// template. Formatting never fails and never validates: blank fields are
// substituted as empty strings.
package payload

import (
	"net/url"
	"strings"
	"time"
)

// Content is a single content request. The set of implementations is closed;
// only the types in this package satisfy it.
type Content interface {
	Kind() Kind
	isContent()
}

// WiFi security modes accepted by the WIFI: scheme.
const (
	SecurityWPA    = "WPA"
	SecurityWEP    = "WEP"
	SecurityNoPass = "nopass"
)

// SecurityModes lists the WiFi security options in selector order.
var SecurityModes = []string{SecurityWPA, SecurityWEP, SecurityNoPass}

// PlainText encodes the text verbatim.
type PlainText struct {
	Text string
}

// URL encodes the address verbatim.
type URL struct {
	URL string
}

// WiFi holds network credentials for the WIFI: scheme.
type WiFi struct {
	SSID     string
	Password string
	Security string // one of SecurityModes
	Hidden   bool
}

// VCard is a minimal vCard 3.0 business card.
type VCard struct {
	Name  string
	Phone string
	Email string
	Org   string
	URL   string
}

// WhatsApp is a click-to-chat link with a prefilled message.
type WhatsApp struct {
	Phone   string // with country code, digits only
	Message string
}

// Instagram links to a profile by username.
type Instagram struct {
	Username string
}

// LinkedIn encodes the profile URL verbatim.
type LinkedIn struct {
	ProfileURL string
}

// Snapchat links to the add-friend page for a username.
type Snapchat struct {
	Username string
}

// SMS prefills a text message to a phone number.
type SMS struct {
	Phone   string
	Message string
}

// Event is a calendar event template link. Date supplies the calendar day;
// Start and End supply only the clock time.
type Event struct {
	Name    string
	Date    time.Time
	Start   time.Time
	End     time.Time
	Details string
	Venue   string
}

func (PlainText) Kind() Kind { return KindPlainText }
func (URL) Kind() Kind       { return KindURL }
func (WiFi) Kind() Kind      { return KindWiFi }
func (VCard) Kind() Kind     { return KindVCard }
func (WhatsApp) Kind() Kind  { return KindWhatsApp }
func (Instagram) Kind() Kind { return KindInstagram }
func (LinkedIn) Kind() Kind  { return KindLinkedIn }
func (Snapchat) Kind() Kind  { return KindSnapchat }
func (SMS) Kind() Kind       { return KindSMS }
func (Event) Kind() Kind     { return KindEvent }

func (PlainText) isContent() {}
func (URL) isContent()       {}
func (WiFi) isContent()      {}
func (VCard) isContent()     {}
func (WhatsApp) isContent()  {}
func (Instagram) isContent() {}
func (LinkedIn) isContent()  {}
func (Snapchat) isContent()  {}
func (SMS) isContent()       {}
func (Event) isContent()     {}

// calendarURL is the base of the event template link.
const calendarURL = "https://www.google.com/calendar/render"

// Formatter builds payload strings. The zero value reproduces the literal
// templates: user text placed inside URL payloads is not percent-encoded,
// and event text only has spaces replaced with '+'.
type Formatter struct {
	// EscapeURLText query-escapes user text inserted into URL payloads
	// (WhatsApp message, event name, details and venue).
	EscapeURLText bool
}

// Format returns the payload for c using the literal templates.
func Format(c Content) string {
	return Formatter{}.Format(c)
}

// Format returns the payload string for c. A nil content yields "".
func (f Formatter) Format(c Content) string {
	switch v := c.(type) {
	case PlainText:
		return v.Text
	case URL:
		return v.URL
	case WiFi:
		hidden := "false"
		if v.Hidden {
			hidden = "true"
		}
		return "WIFI:T:" + v.Security + ";S:" + v.SSID + ";P:" + v.Password + ";H:" + hidden + ";;"
	case VCard:
		return strings.Join([]string{
			"BEGIN:VCARD",
			"VERSION:3.0",
			"N:" + v.Name,
			"TEL:" + v.Phone,
			"EMAIL:" + v.Email,
			"ORG:" + v.Org,
			"URL:" + v.URL,
			"END:VCARD",
		}, "\n")
	case WhatsApp:
		msg := v.Message
		if f.EscapeURLText {
			msg = url.QueryEscape(msg)
		}
		return "https://wa.me/" + v.Phone + "?text=" + msg
	case Instagram:
		return "https://instagram.com/" + v.Username
	case LinkedIn:
		return v.ProfileURL
	case Snapchat:
		return "https://www.snapchat.com/add/" + v.Username
	case SMS:
		return "SMSTO:" + v.Phone + ":" + v.Message
	case Event:
		return calendarURL +
			"?action=TEMPLATE" +
			"&text=" + f.eventText(v.Name) +
			"&dates=" + eventBound(v.Date, v.Start) + "/" + eventBound(v.Date, v.End) +
			"&details=" + f.eventText(v.Details) +
			"&location=" + f.eventText(v.Venue)
	}
	return ""
}

func (f Formatter) eventText(s string) string {
	if f.EscapeURLText {
		return url.QueryEscape(s)
	}
	return strings.ReplaceAll(s, " ", "+")
}

// eventBound renders YYYYMMDDTHHMMSSZ from the day of date and the clock of t.
// The values are written as entered; no timezone conversion happens.
func eventBound(date, t time.Time) string {
	return date.Format("20060102") + "T" + t.Format("150405") + "Z"
}
