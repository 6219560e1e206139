// Package agg has aggregation logic that turns contribution records into
// attribution buckets and rendered copyright headers.
package agg

import (
	"slices"
	"sort"
	"strconv"

	"github.com/huangsam/spdxattr/core/identity"
	"github.com/huangsam/spdxattr/schema"
)

// BucketYears is one attribution bucket with its distinct contribution years.
type BucketYears struct {
	Bucket schema.AttributionBucket
	Years  map[int]struct{}
}

// SortedYears returns the years in ascending order.
func (b *BucketYears) SortedYears() []int {
	years := make([]int, 0, len(b.Years))
	for y := range b.Years {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Result is the aggregation of one file.
type Result struct {
	Buckets    map[string]*BucketYears // keyed by AttributionBucket.Key
	Unresolved []string                // sorted canonical emails without an alias entry
}

// Aggregator groups contribution years by bucket using immutable lookup tables.
type Aggregator struct {
	aliases *identity.AliasTable
	orgs    *identity.OrgTable
}

// NewAggregator creates an aggregator over the given tables.
func NewAggregator(aliases *identity.AliasTable, orgs *identity.OrgTable) *Aggregator {
	return &Aggregator{aliases: aliases, orgs: orgs}
}

// Bucket canonicalizes and classifies one contributor. Organization routing
// takes precedence over the alias outcome.
func (a *Aggregator) Bucket(email, rawName string) schema.AttributionBucket {
	ident := a.aliases.Canonicalize(email, rawName)
	if org, ok := a.orgs.Classify(ident.Email); ok {
		return schema.AttributionBucket{Kind: schema.OrganizationBucket, Organization: org, Identity: ident}
	}
	if !ident.Resolved {
		return schema.AttributionBucket{Kind: schema.UnresolvedBucket, Identity: ident}
	}
	return schema.AttributionBucket{Kind: schema.IndividualBucket, Identity: ident}
}

// Aggregate groups the records of one file. Organization buckets union the
// years of every identity they own; individual buckets are per canonical email.
func (a *Aggregator) Aggregate(records []schema.ContributionRecord) Result {
	result := Result{Buckets: make(map[string]*BucketYears)}
	unresolved := make(map[string]struct{})

	for _, rec := range records {
		bucket := a.Bucket(rec.ContributorEmail, rec.ContributorName)
		key := bucket.Key()
		by, ok := result.Buckets[key]
		if !ok {
			by = &BucketYears{Bucket: bucket, Years: make(map[int]struct{})}
			result.Buckets[key] = by
		} else if bucket.Kind != schema.OrganizationBucket {
			by.Bucket = preferIdentity(by.Bucket, bucket)
		}
		by.Years[rec.Year] = struct{}{}
	}

	for _, by := range result.Buckets {
		if by.Bucket.Kind == schema.UnresolvedBucket {
			unresolved[by.Bucket.Identity.Email] = struct{}{}
		}
	}
	for email := range unresolved {
		result.Unresolved = append(result.Unresolved, email)
	}
	sort.Strings(result.Unresolved)
	return result
}

// preferIdentity picks the bucket identity independently of record order:
// resolved beats unresolved, then the smaller display name wins.
func preferIdentity(current, next schema.AttributionBucket) schema.AttributionBucket {
	if current.Identity.Resolved != next.Identity.Resolved {
		if next.Identity.Resolved {
			return next
		}
		return current
	}
	if next.Identity.DisplayName < current.Identity.DisplayName {
		return next
	}
	return current
}

// YearSpan renders a non-empty ascending year list as "Y" or "min-max".
// Gaps are not shown.
func YearSpan(years []int) string {
	if len(years) == 0 {
		return ""
	}
	first, last := years[0], years[len(years)-1]
	if first == last {
		return strconv.Itoa(first)
	}
	return strconv.Itoa(first) + "-" + strconv.Itoa(last)
}

// FormatHeaders renders every bucket and sorts by the rendered line.
// An empty mapping yields no headers.
func FormatHeaders(buckets map[string]*BucketYears, orgs *identity.OrgTable) []schema.AttributionHeader {
	headers := make([]schema.AttributionHeader, 0, len(buckets))
	for _, by := range buckets {
		if len(by.Years) == 0 {
			continue
		}
		h := schema.AttributionHeader{
			Kind:     by.Bucket.Kind,
			YearSpan: YearSpan(by.SortedYears()),
		}
		if by.Bucket.Kind == schema.OrganizationBucket {
			h.HolderLabel = by.Bucket.Organization
			h.ContactEmail = orgs.ContactEmail(by.Bucket.Organization)
		} else {
			h.HolderLabel = by.Bucket.Identity.DisplayName
			h.ContactEmail = by.Bucket.Identity.Email
		}
		headers = append(headers, h)
	}
	sort.Slice(headers, func(i, j int) bool {
		return headers[i].String() < headers[j].String()
	})
	return headers
}
