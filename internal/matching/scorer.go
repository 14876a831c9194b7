package matching

import (
	"math"

	pstrings "careflow/pkg/platform/strings"
)

// proximityRangeKm is the distance at which the proximity score reaches
// zero; anything at or beyond scores 0, co-located scores 100.
const proximityRangeKm = 50.0

// siblingBonus lifts continuity when the child needs sibling co-placement
// and the provider takes sibling groups.
const siblingBonus = 25.0

const earthRadiusKm = 6371.0

// distanceKm is the haversine great-circle distance between two coordinates.
func distanceKm(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// proximityScore decays linearly from 100 at the child's home to 0 at
// proximityRangeKm.
func proximityScore(dist float64) float64 {
	return clampScore(100 - dist*(100/proximityRangeKm))
}

// continuityScore measures how well the placement preserves the child's
// world: distance to the current school (same decay as proximity) plus the
// sibling co-placement bonus. Without a known school the school component is
// neutral so the sibling signal still differentiates.
func continuityScore(profile Profile, provider Provider) float64 {
	school := 50.0
	if profile.SchoolLocation != nil {
		school = proximityScore(distanceKm(*profile.SchoolLocation, provider.Location))
	}
	if profile.SiblingCount > 0 && provider.AcceptsSiblingGroups {
		school += siblingBonus
	}
	return clampScore(school)
}

// cultureScore is the share of the child's cultural/language needs the
// provider can meet. Needs and capabilities are free-text tags from two
// different systems, so matching is case-insensitive with duplicates
// collapsed. No recorded needs scores 100: there is nothing to miss.
func cultureScore(needs []string, capabilities []string) float64 {
	needs = pstrings.DedupeAndTrimLower(needs)
	if len(needs) == 0 {
		return 100
	}
	capable := make(map[string]bool, len(capabilities))
	for _, c := range pstrings.DedupeAndTrimLower(capabilities) {
		capable[c] = true
	}
	var met int
	for _, n := range needs {
		if capable[n] {
			met++
		}
	}
	return clampScore(float64(met) / float64(len(needs)) * 100)
}

// availabilityScore is the provider's free share of capacity.
func availabilityScore(provider Provider) float64 {
	if provider.Capacity <= 0 {
		return 0
	}
	return clampScore(float64(provider.Vacancies) / float64(provider.Capacity) * 100)
}

// score computes the full candidate entry for one provider.
func score(profile Profile, provider Provider, weights Weights, riskScore float64) Candidate {
	dist := distanceKm(profile.HomeLocation, provider.Location)
	sub := SubScores{
		Proximity:    proximityScore(dist),
		Continuity:   continuityScore(profile, provider),
		Culture:      cultureScore(profile.CulturalNeeds, provider.CulturalCapabilities),
		Availability: availabilityScore(provider),
	}
	composite := weights.Proximity*sub.Proximity +
		weights.Continuity*sub.Continuity +
		weights.Culture*sub.Culture +
		weights.Availability*sub.Availability

	return Candidate{
		ProviderID: provider.ID,
		Name:       provider.Name,
		Score:      math.Round(composite*100) / 100,
		SubScores:  sub,
		DistanceKm: math.Round(dist*100) / 100,
		RiskScore:  riskScore,
	}
}
