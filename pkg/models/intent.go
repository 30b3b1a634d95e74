package models

// Intent is the closed classification set produced by the extractor.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentInfoServices Intent = "info_services"
	IntentInfoPrices   Intent = "info_prices"
	IntentInfoHours    Intent = "info_hours"
	IntentBook         Intent = "book"
	IntentCancel       Intent = "cancel"
	IntentReschedule   Intent = "reschedule"
	IntentChitchat     Intent = "chitchat"
	IntentOther        Intent = "other"
)

// Intents lists every valid intent, in prompt/display order.
var Intents = []Intent{
	IntentGreeting,
	IntentInfoServices,
	IntentInfoPrices,
	IntentInfoHours,
	IntentBook,
	IntentCancel,
	IntentReschedule,
	IntentChitchat,
	IntentOther,
}

// Valid reports whether i belongs to the closed intent set.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Slot names form a closed set. Missing slots are absent from maps, never empty.
const (
	SlotServiceType   = "service_type"
	SlotPreferredDate = "preferred_date"
	SlotPreferredTime = "preferred_time"
	SlotClientName    = "client_name"
	SlotClientEmail   = "client_email"
	SlotClientPhone   = "client_phone"
	SlotStaffName     = "staff_name"
	SlotBookingID     = "booking_id"
)

// SlotNames lists the closed slot set in canonical order.
var SlotNames = []string{
	SlotServiceType,
	SlotPreferredDate,
	SlotPreferredTime,
	SlotClientName,
	SlotClientEmail,
	SlotClientPhone,
	SlotStaffName,
	SlotBookingID,
}

// KnownSlot reports whether name belongs to the closed slot set.
func KnownSlot(name string) bool {
	for _, s := range SlotNames {
		if s == name {
			return true
		}
	}
	return false
}
