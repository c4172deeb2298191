package domain

import (
	"sort"

	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

// KindSpec describes how one vertical stores its reviews. Column and table
// names differ per vertical for historical reasons; everything else in the
// engine is generic over this spec.
type KindSpec struct {
	Kind        Kind
	Label       string // human label used in exports and analytics
	Table       string
	StatusCol   string
	RatingCol   string
	TargetCol   string
	ResponseCol string // empty when the vertical has no owner responses
	ResponseAt  string
	TargetTable string
}

// SupportsResponse reports whether the vertical stores owner responses.
func (s KindSpec) SupportsResponse() bool {
	return s.ResponseCol != ""
}

var kindRegistry = map[Kind]KindSpec{
	KindCommerce: {
		Kind:        KindCommerce,
		Label:       "Commerce",
		Table:       "commerce_reviews",
		StatusCol:   "status",
		RatingCol:   "rating",
		TargetCol:   "merchant_id",
		ResponseCol: "merchant_response",
		ResponseAt:  "merchant_response_at",
		TargetTable: "merchant_profiles",
	},
	KindAgro: {
		Kind:        KindAgro,
		Label:       "Agro",
		Table:       "agro_reviews",
		StatusCol:   "state",
		RatingCol:   "rating",
		TargetCol:   "target_entity_id",
		ResponseCol: "response",
		ResponseAt:  "response_at",
		TargetTable: "producer_profiles",
	},
	KindServices: {
		Kind:        KindServices,
		Label:       "Services",
		Table:       "services_reviews",
		StatusCol:   "status",
		RatingCol:   "rating",
		TargetCol:   "provider_id",
		ResponseCol: "provider_response",
		ResponseAt:  "provider_response_at",
		TargetTable: "provider_profiles",
	},
	KindSession: {
		Kind:        KindSession,
		Label:       "Session",
		Table:       "session_reviews",
		StatusCol:   "review_status",
		RatingCol:   "overall_rating",
		TargetCol:   "session_id",
		TargetTable: "mentoring_sessions",
	},
	KindCourse: {
		Kind:        KindCourse,
		Label:       "Course",
		Table:       "course_reviews",
		StatusCol:   "review_status",
		RatingCol:   "rating",
		TargetCol:   "course_id",
		ResponseCol: "instructor_response",
		ResponseAt:  "instructor_response_at",
		TargetTable: "lms_courses",
	},
}

// SpecFor resolves the storage spec for a kind. Unknown kinds are rejected
// before any query is built.
func SpecFor(kind Kind) (KindSpec, error) {
	spec, ok := kindRegistry[kind]
	if !ok {
		return KindSpec{}, apperrors.UnsupportedKind(string(kind))
	}
	return spec, nil
}

// Kinds returns all registered kinds in stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindRegistry))
	for k := range kindRegistry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
