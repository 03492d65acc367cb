// Package display renders the account view model for the terminal.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/view/dto/account"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var titleCaser = cases.Title(language.English)

// ProfileDisplay is the JSON shape of the account view.
type ProfileDisplay struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Unverified  bool   `json:"unverified"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Country     string `json:"country,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Label turns a field name such as "first_name" into "First Name".
func Label(field string) string {
	return titleCaser.String(strings.ReplaceAll(field, "_", " "))
}

// Profile writes d in the given format.
func Profile(w io.Writer, d account.Data, format string) error {
	switch format {
	case FormatJSON:
		return profileJSON(w, d)
	case FormatTable, "":
		return profileTable(w, d)
	}
	return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatTable, FormatJSON)
}

func profileTable(w io.Writer, d account.Data) error {
	if !d.Loaded {
		_, err := fmt.Fprintln(w, "Loading account info...")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	heading := d.DisplayName
	if d.Unverified {
		heading += "  [Unverified]"
	}
	fmt.Fprintln(tw, heading)
	fmt.Fprintf(tw, "Avatar\t%s\n", avatarText(d.AvatarSrc))

	fmt.Fprintln(tw, "\nPROFILE\t")
	for _, name := range domain.EditableFields {
		value, _ := d.Form.Field(name)
		fmt.Fprintf(tw, "%s\t%s\n", Label(name), orDash(value))
	}

	fmt.Fprintln(tw, "\nADDRESS\t")
	fmt.Fprintf(tw, "Address\t%s\n", orDash(d.Address))
	fmt.Fprintf(tw, "City\t%s\n", orDash(d.City))
	fmt.Fprintf(tw, "State / Province\t%s\n", orDash(d.State))
	fmt.Fprintf(tw, "ZIP / Postal Code\t%s\n", orDash(d.Zip))
	fmt.Fprintf(tw, "Country\t%s\n", orDash(d.Country))

	if d.ProfileError != "" {
		fmt.Fprintf(tw, "\nError\t%s\n", d.ProfileError)
	}
	return tw.Flush()
}

func profileJSON(w io.Writer, d account.Data) error {
	out := ProfileDisplay{
		DisplayName: d.DisplayName,
		Avatar:      d.AvatarSrc,
		Unverified:  d.Unverified,
		Username:    d.Form.Username,
		FirstName:   d.Form.FirstName,
		LastName:    d.Form.LastName,
		Email:       d.Form.Email,
		Address:     d.Address,
		City:        d.City,
		State:       d.State,
		Zip:         d.Zip,
		Country:     d.Country,
		Error:       d.ProfileError,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func avatarText(src string) string {
	switch {
	case src == "":
		return "-"
	case strings.HasPrefix(src, "data:"):
		return "(embedded image)"
	}
	return truncateString(src, 60)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to the specified length with ellipsis
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
