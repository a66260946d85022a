// Package permissions implements the capability bitmask attached to user
// accounts. Each capability is an independent power-of-two bit packed into a
// single integer; the external user service stores and returns the raw value.
package permissions

import "strconv"

// Set is a packed permission bitmask.
type Set uint64

// Capability bits. Values are fixed and must never be reordered: the
// external user store persists the raw integers.
const (
	ProcessSales Set = 1 << iota
	AccessReports
	ManageCustomers
	ManageProducts
	ManageUsers
	ManageExpenses
	ManageInventory
)

// None is the empty permission set.
const None Set = 0

// Has reports whether the set contains the given bit.
func (s Set) Has(bit Set) bool { return s&bit != 0 }

// Add returns the set with the given bit enabled.
func (s Set) Add(bit Set) Set { return s | bit }

// Remove returns the set with the given bit cleared.
func (s Set) Remove(bit Set) Set { return s &^ bit }

// Permission pairs a capability bit with its display name, for the user
// administration screens.
type Permission struct {
	Name  string `json:"name"`
	Value Set    `json:"value"`
}

// Catalog lists every known capability in bit order.
func Catalog() []Permission {
	return []Permission{
		{Name: "ProcessSales", Value: ProcessSales},
		{Name: "AccessReports", Value: AccessReports},
		{Name: "ManageCustomers", Value: ManageCustomers},
		{Name: "ManageProducts", Value: ManageProducts},
		{Name: "ManageUsers", Value: ManageUsers},
		{Name: "ManageExpenses", Value: ManageExpenses},
		{Name: "ManageInventory", Value: ManageInventory},
	}
}

// ParseSet parses the decimal string form the login endpoint returns.
// Empty or malformed input yields the empty set.
func ParseSet(s string) Set {
	if s == "" {
		return None
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return None
	}
	return Set(v)
}

// String returns the decimal form used on the wire.
func (s Set) String() string {
	return strconv.FormatUint(uint64(s), 10)
}
