package agg

import (
	"strings"
	"testing"

	"github.com/huangsam/spdxattr/core/identity"
	"github.com/huangsam/spdxattr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	aliases, err := identity.ParseAliasTable(strings.NewReader(
		"Jane Doe <jane@example.com> <jdoe@laptop.local>\n" +
			"Jane Doe <jane@example.com>\n" +
			"Alice Phala <alice@phala.network> <alice@gmail.com>\n",
	))
	require.NoError(t, err)
	return NewAggregator(aliases, identity.DefaultOrgTable())
}

func rec(email, name string, year int) schema.ContributionRecord {
	return schema.ContributionRecord{ContributorEmail: email, ContributorName: name, Year: year}
}

func render(headers []schema.AttributionHeader) []string {
	return schema.RenderHeaders(headers)
}

func TestYearSpan(t *testing.T) {
	tests := []struct {
		years []int
		want  string
	}{
		{[]int{2024}, "2024"},
		{[]int{2022, 2023, 2025}, "2022-2025"},
		{[]int{2021, 2021}, "2021"},
		{nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, YearSpan(tt.years))
		})
	}
}

func TestAggregate_OrganizationUnion(t *testing.T) {
	a := newTestAggregator(t)
	result := a.Aggregate([]schema.ContributionRecord{
		rec("a@phala.network", "A", 2022),
		rec("b@phala.network", "B", 2025),
		rec("a@phala.network", "A", 2023),
	})

	require.Len(t, result.Buckets, 1)
	headers := FormatHeaders(result.Buckets, identity.DefaultOrgTable())
	assert.Equal(t, []string{"SPDX-FileCopyrightText: © 2022-2025 Phala Network <dstack@phala.network>"}, render(headers))
	assert.Empty(t, result.Unresolved)
}

func TestAggregate_OrganizationPrecedence(t *testing.T) {
	a := newTestAggregator(t)
	// alice@gmail.com resolves through the alias table to an org-domain email
	result := a.Aggregate([]schema.ContributionRecord{
		rec("alice@gmail.com", "alice", 2021),
	})
	headers := FormatHeaders(result.Buckets, identity.DefaultOrgTable())
	require.Len(t, headers, 1)
	assert.Equal(t, schema.OrganizationBucket, headers[0].Kind)
	assert.Equal(t, "Phala Network", headers[0].HolderLabel)
}

func TestAggregate_IndividualsByCanonicalEmail(t *testing.T) {
	a := newTestAggregator(t)
	result := a.Aggregate([]schema.ContributionRecord{
		rec("jdoe@laptop.local", "jdoe", 2020),
		rec("jane@example.com", "Jane", 2024),
		rec("x@near.ai", "X", 2023),
	})

	headers := FormatHeaders(result.Buckets, identity.DefaultOrgTable())
	assert.Equal(t, []string{
		"SPDX-FileCopyrightText: © 2020-2024 Jane Doe <jane@example.com>",
		"SPDX-FileCopyrightText: © 2023 Near Foundation <contact@near.ai>",
	}, render(headers))
}

func TestAggregate_Unresolved(t *testing.T) {
	a := newTestAggregator(t)
	result := a.Aggregate([]schema.ContributionRecord{
		rec("zed@example.org", "Zed", 2022),
		rec("zed@example.org", "zed", 2023),
		rec("anon@example.org", "", 2021),
	})

	assert.Equal(t, []string{"anon@example.org", "zed@example.org"}, result.Unresolved)
	headers := FormatHeaders(result.Buckets, identity.DefaultOrgTable())
	assert.Equal(t, []string{
		"SPDX-FileCopyrightText: © 2021 Unknown <anon@example.org>",
		"SPDX-FileCopyrightText: © 2022-2023 Zed <zed@example.org>",
	}, render(headers))
	for _, h := range headers {
		assert.Equal(t, schema.UnresolvedBucket, h.Kind)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := newTestAggregator(t)
	records := []schema.ContributionRecord{
		rec("zed@example.org", "Zed", 2022),
		rec("jane@example.com", "Jane", 2019),
		rec("b@nethermind.io", "B", 2024),
		rec("zed@example.org", "Zeddy", 2020),
		rec("a@phala.network", "A", 2022),
	}
	reversed := make([]schema.ContributionRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	first := render(FormatHeaders(a.Aggregate(records).Buckets, identity.DefaultOrgTable()))
	second := render(FormatHeaders(a.Aggregate(reversed).Buckets, identity.DefaultOrgTable()))
	assert.Equal(t, first, second)
	assert.IsIncreasing(t, first)
}

func TestFormatHeaders_Empty(t *testing.T) {
	assert.Empty(t, FormatHeaders(nil, identity.DefaultOrgTable()))
	assert.Empty(t, FormatHeaders(map[string]*BucketYears{}, identity.DefaultOrgTable()))
}

func TestPreferIdentity(t *testing.T) {
	resolved := schema.AttributionBucket{Kind: schema.IndividualBucket, Identity: schema.CanonicalIdentity{DisplayName: "Zoe", Email: "z@x.io", Resolved: true}}
	unresolved := schema.AttributionBucket{Kind: schema.UnresolvedBucket, Identity: schema.CanonicalIdentity{DisplayName: "Al", Email: "z@x.io"}}

	assert.Equal(t, resolved, preferIdentity(unresolved, resolved))
	assert.Equal(t, resolved, preferIdentity(resolved, unresolved))
}
