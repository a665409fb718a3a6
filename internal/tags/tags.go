// Package tags extracts a small, closed set of typed concerns from the
// arbitrary string tag bags upstream elements carry, per the "dynamic field
// access / bag-of-tags" design note: raw tag maps are read exactly once,
// here, and never propagated past ingestion.
package tags

// Highway is the walkable road-class enumeration shared by the ingestion
// layer and the scorer, resolving the subtle mismatch the reference
// implementation had between its two separate enums.
type Highway string

const (
	HighwayTrunk         Highway = "trunk"
	HighwayPrimary       Highway = "primary"
	HighwaySecondary     Highway = "secondary"
	HighwayTertiary      Highway = "tertiary"
	HighwayUnclassified  Highway = "unclassified"
	HighwayResidential   Highway = "residential"
	HighwayLivingStreet  Highway = "living_street"
	HighwayPedestrian    Highway = "pedestrian"
	HighwayFootway       Highway = "footway"
	HighwayCycleway      Highway = "cycleway"
	HighwayPath          Highway = "path"
	HighwaySteps         Highway = "steps"
	HighwayService       Highway = "service"
	HighwayTrack         Highway = "track"
	HighwayStreetLamp    Highway = "street_lamp"
	HighwayBusStop       Highway = "bus_stop"
	HighwayUnknown       Highway = ""
)

// walkable is the enumerated set of classes pedestrians may traverse, used
// when ingestion decides which ways GraphBuilder turns into edges. Main-road
// checks use the separate mainRoads set below.
var walkable = map[Highway]bool{
	HighwayTrunk:        true,
	HighwayPrimary:       true,
	HighwaySecondary:     true,
	HighwayTertiary:      true,
	HighwayUnclassified:  true,
	HighwayResidential:   true,
	HighwayLivingStreet:  true,
	HighwayPedestrian:    true,
	HighwayFootway:       true,
	HighwayCycleway:      true,
	HighwayPath:          true,
	HighwaySteps:         true,
	HighwayService:       true,
	HighwayTrack:         true,
}

// IsWalkable reports whether h is in the shared walkable-class enum.
func IsWalkable(h Highway) bool { return walkable[h] }

// mainRoads are the classes favoured by the traffic factor; they also set
// the mainRoadRatio statistic and the narrower POI corridor.
var mainRoads = map[Highway]bool{
	HighwayTrunk:     true,
	HighwayPrimary:   true,
	HighwaySecondary: true,
	HighwayTertiary:  true,
}

// IsMainRoad reports whether h counts as a main road for traffic scoring
// and for the response's mainRoadRatio statistic.
func IsMainRoad(h Highway) bool { return mainRoads[h] }

// Surface is the surface type read from the "surface" tag. The constants
// below are the recognized values; any other tag value is kept as given.
// Only the unpaved set incurs the surface penalty, so SurfaceUnknown and
// unrecognized values are treated as paved for scoring (no penalty, no bonus).
type Surface string

const (
	SurfacePaved    Surface = "paved"
	SurfaceAsphalt  Surface = "asphalt"
	SurfaceConcrete Surface = "concrete"
	SurfaceGravel   Surface = "gravel"
	SurfaceDirt     Surface = "dirt"
	SurfaceGround   Surface = "ground"
	SurfaceUnknown  Surface = ""
)

// unpaved is the set of surfaces that incur the surface penalty and count
// toward the route's unpavedPct statistic.
var unpaved = map[Surface]bool{
	SurfaceGravel: true,
	SurfaceDirt:   true,
	SurfaceGround: true,
}

// IsUnpaved reports whether s is a soft/unpaved surface.
func IsUnpaved(s Surface) bool { return unpaved[s] }

// View is the typed projection of one raw element's tag bag, computed once
// at ingestion by FromRaw and consumed by GraphBuilder and CoverageMaps.
type View struct {
	Highway         Highway
	Name            string
	Lit             bool
	Surveillance    bool
	Amenity         string
	Shop            string
	Leisure         string
	Tourism         string
	PublicTransport string // "stop_position" | "platform" | ""
	Surface         Surface
	HasSidewalk     bool
}

// FromRaw extracts the typed View from a raw string tag map. Unknown keys
// are silently dropped; the values of recognized keys such as highway and
// surface are kept as given, even when outside their enumerations. This is
// the single place the bag-of-tags shape is read.
func FromRaw(raw map[string]string) View {
	v := View{
		Highway:      Highway(raw["highway"]),
		Name:         raw["name"],
		Lit:          raw["lit"] == "yes",
		Surveillance: raw["man_made"] == "surveillance",
		Amenity:      raw["amenity"],
		Shop:         raw["shop"],
		Leisure:      raw["leisure"],
		Tourism:      raw["tourism"],
		Surface:      Surface(raw["surface"]),
	}

	if pt := raw["public_transport"]; pt == "stop_position" || pt == "platform" {
		v.PublicTransport = pt
	}
	if raw["highway"] == "bus_stop" {
		v.PublicTransport = "platform"
	}

	switch sw := raw["sidewalk"]; sw {
	case "both", "left", "right", "yes":
		v.HasSidewalk = true
	}

	return v
}

// IsOpenVenue reports whether the view describes a place/venue counted
// toward the "place" factor and the place-nearby POI list (amenity, shop,
// leisure, or tourism tag present).
func (v View) IsOpenVenue() bool {
	return v.Amenity != "" || v.Shop != "" || v.Leisure != "" || v.Tourism != ""
}

// IsTransitStop reports whether the view marks a transit stop/platform.
func (v View) IsTransitStop() bool {
	return v.PublicTransport != ""
}

// IsLightSource reports whether the view marks a standalone street lamp.
func (v View) IsLightSource() bool {
	return v.Highway == HighwayStreetLamp
}
