package domain

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// RiskTier classifies a supplier by reliability and quality
type RiskTier string

const (
	RiskLow      RiskTier = "LOW_RISK"
	RiskModerate RiskTier = "MODERATE_RISK"
	RiskHigh     RiskTier = "HIGH_RISK"
	RiskUnknown  RiskTier = "UNKNOWN_RISK"
)

var riskTiers = []RiskTier{RiskLow, RiskModerate, RiskHigh, RiskUnknown}

// ParseRiskTier matches a label against the known tiers, ignoring case
func ParseRiskTier(label string) (RiskTier, error) {
	label = strings.TrimSpace(label)
	for _, tier := range riskTiers {
		if strings.EqualFold(label, string(tier)) {
			return tier, nil
		}
	}
	return "", fmt.Errorf("unknown risk tier %q: %w", label, ErrInvalidData)
}

// Scan rejects stored tiers that are not one of the known labels
func (t *RiskTier) Scan(src interface{}) error {
	label, err := scanLabel(src)
	if err != nil {
		return err
	}
	tier, err := ParseRiskTier(label)
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// ShipmentStatus is the lifecycle state of a shipment
type ShipmentStatus string

const (
	ShipmentInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentDelivered ShipmentStatus = "DELIVERED"
	ShipmentDelayed   ShipmentStatus = "DELAYED"
	ShipmentCancelled ShipmentStatus = "CANCELLED"
)

var shipmentStatuses = []ShipmentStatus{ShipmentInTransit, ShipmentDelivered, ShipmentDelayed, ShipmentCancelled}

// Only IN_TRANSIT shipments move; every other status is final.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentInTransit: {ShipmentDelivered, ShipmentDelayed, ShipmentCancelled},
}

// ParseShipmentStatus matches a label against the known statuses, ignoring case
func ParseShipmentStatus(label string) (ShipmentStatus, error) {
	label = strings.TrimSpace(label)
	for _, status := range shipmentStatuses {
		if strings.EqualFold(label, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown shipment status %q: %w", label, ErrInvalidData)
}

func (s *ShipmentStatus) Scan(src interface{}) error {
	label, err := scanLabel(src)
	if err != nil {
		return err
	}
	status, err := ParseShipmentStatus(label)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

func scanLabel(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into label", src)
	}
}

// CanTransition reports whether a shipment may move from s to next.
func (s ShipmentStatus) CanTransition(next ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Urgency ranks reorder recommendations
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// Rank orders urgencies, HIGH first.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	default:
		return 2
	}
}

// TrackingHash is the 32-byte digest attached to a shipment
type TrackingHash [32]byte

// String returns the 0x-prefixed hex form
func (h TrackingHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether the digest is unset
func (h TrackingHash) IsZero() bool {
	return h == TrackingHash{}
}

func (h TrackingHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *TrackingHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return h.parse(s)
}

// Value stores the digest as raw bytes
func (h TrackingHash) Value() (driver.Value, error) {
	return h[:], nil
}

// Scan reads the digest from raw bytes or hex text
func (h *TrackingHash) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		if len(v) == len(h) {
			copy(h[:], v)
			return nil
		}
		return h.parse(string(v))
	case string:
		return h.parse(v)
	case nil:
		*h = TrackingHash{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TrackingHash", src)
	}
}

func (h *TrackingHash) parse(s string) error {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("invalid tracking hash: %w", err)
	}
	if len(raw) != len(h) {
		return fmt.Errorf("invalid tracking hash length %d", len(raw))
	}
	copy(h[:], raw)
	return nil
}
