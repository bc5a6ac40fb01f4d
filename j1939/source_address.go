package j1939

// Placeholder names for source addresses without a database entry.
// The bands follow the SAE J1939 address assignment: 92-127 are
// reserved for future SAE assignment and 128-247 are left to the
// industry groups.
const (
	saNameReserved      = "Reserved"
	saNameIndustryGroup = "Industry Group specific"
	saNameUnknown       = "Unknown"
)

const (
	saReservedLow  = 92
	saReservedHigh = 127

	saGlobalPreferredHigh = 127
	saIndustryGroupLow    = 128
	saIndustryGroupHigh   = 247
)

// resolveSourceAddressName maps a source address to its assigned name.
// Addresses in the SAE preferred ranges are looked up in the database,
// the remaining bands get a fixed placeholder.
func (d *Decoder) resolveSourceAddressName(sa uint8) string {
	switch {
	case sa >= saReservedLow && sa <= saReservedHigh:
		return saNameReserved

	case sa <= saGlobalPreferredHigh || sa > saIndustryGroupHigh:
		name, ok := d.db.SourceAddressName(sa)
		if !ok {
			d.log.Warn("no source address name found in database", "source_address", sa)
			return saNameUnknown
		}
		return name

	case sa >= saIndustryGroupLow && sa <= saIndustryGroupHigh:
		return saNameIndustryGroup
	}

	d.log.Warn("source address out of range", "source_address", sa)

	return saNameUnknown
}
