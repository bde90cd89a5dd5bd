package model

// Van status values.  Only Available vans are listed publicly; any other
// non-empty status is accepted and hides the van.
const (
	VanAvailable   = "Available"
	VanUnavailable = "Unavailable"
)

// Van is a vehicle in the fleet.
type Van struct {
	ID        uint64 `json:"van_id"`
	VanNumber string `json:"van_number"`
	Status    string `json:"status"`
}

// Route connects a start and an end location.
type Route struct {
	ID            uint64 `json:"route_id"`
	StartLocation string `json:"start_location"`
	EndLocation   string `json:"end_location"`
}

// Driver is a contracted driver.  AssignedVanID is a weak reference: the
// store enforces existence, not this layer.
type Driver struct {
	ID            uint64  `json:"driver_id"`
	Name          string  `json:"name"`
	Contract      string  `json:"contract"`
	AssignedVanID *uint64 `json:"assigned_van_id"`
}
