package model

// Settings is the singleton configuration row (id is always 1).  It
// controls the dimensions of the seating grid and the page branding.
//
// Fields:
//  ID           – primary key, fixed to SettingsID.
//  NumRows      – number of grid rows rendered for every event.
//  NumCols      – number of grid columns rendered for every event.
//  LogoURL      – optional logo shown on the public page.
//  ColorPrimary – optional primary colour used by the page theme.
type Settings struct {
    ID           uint64  `json:"id"`            // settings.id
    NumRows      int     `json:"num_rows"`      // settings.num_rows
    NumCols      int     `json:"num_cols"`      // settings.num_cols
    LogoURL      *string `json:"logo_url"`      // settings.logo_url (nullable)
    ColorPrimary *string `json:"color_primary"` // settings.color_primary (nullable)
}

// SettingsID is the primary key of the only settings row.
const SettingsID uint64 = 1
