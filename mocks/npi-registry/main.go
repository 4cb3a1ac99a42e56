// Mock of the national provider registry's search API. Serves a small canned
// provider set with the same query parameters and JSON shape as the real
// endpoint, for local development and end-to-end tests.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strings"
)

type provider struct {
	Number     int64      `json:"number"`
	Basic      basic      `json:"basic"`
	Addresses  []address  `json:"addresses"`
	Taxonomies []taxonomy `json:"taxonomies"`
}

type basic struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Credential      string `json:"credential"`
	EnumerationDate string `json:"enumeration_date"`
}

type address struct {
	Purpose          string `json:"address_purpose"`
	City             string `json:"city"`
	State            string `json:"state"`
	OrganizationName string `json:"organization_name"`
}

type taxonomy struct {
	Desc    string `json:"desc"`
	Primary bool   `json:"primary"`
	State   string `json:"state"`
	License string `json:"license"`
}

type searchResponse struct {
	ResultCount int        `json:"result_count"`
	Results     []provider `json:"results"`
}

var providers = []provider{
	{
		Number: 1396882474,
		Basic:  basic{FirstName: "EVAN", LastName: "JOYCE", Credential: "M.D.", EnumerationDate: "2008-09-12"},
		Addresses: []address{
			{Purpose: "MAILING", City: "BOISE", State: "ID"},
			{Purpose: "LOCATION", City: "BOISE", State: "ID", OrganizationName: "ST LUKES CLINIC"},
		},
		Taxonomies: []taxonomy{
			{Desc: "Neurological Surgery", Primary: true, State: "ID", License: "M-11873"},
		},
	},
	{
		Number: 1558412906,
		Basic:  basic{FirstName: "EVAN", LastName: "JOYCE", Credential: "DO", EnumerationDate: "2015-03-02"},
		Addresses: []address{
			{Purpose: "LOCATION", City: "PORTLAND", State: "OR"},
		},
		Taxonomies: []taxonomy{
			{Desc: "Dermatology", Primary: true, State: "OR", License: "D-40921"},
		},
	},
	{
		Number: 1740283055,
		Basic:  basic{FirstName: "MARGARET", LastName: "JOYCE", Credential: "MD", EnumerationDate: "1999-07-20"},
		Addresses: []address{
			{Purpose: "LOCATION", City: "TAMPA", State: "FL"},
		},
		Taxonomies: []taxonomy{
			{Desc: "Family Medicine", Primary: true, State: "FL", License: "ME-55102"},
		},
	},
	{
		Number: 1609361428,
		Basic:  basic{FirstName: "JANE", LastName: "ROE", Credential: "MD", EnumerationDate: "2012-01-15"},
		Addresses: []address{
			{Purpose: "LOCATION", City: "PROVO", State: "UT"},
		},
		Taxonomies: []taxonomy{
			{Desc: "Internal Medicine", Primary: true, State: "UT", License: "UT-88213"},
		},
	},
}

func main() {
	addr := flag.String("addr", ":9001", "listen address")
	flag.Parse()

	http.HandleFunc("/", search)

	log.Printf("mock provider registry listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	first := q.Get("first_name")
	last := q.Get("last_name")
	state := q.Get("state")
	city := q.Get("city")

	var results []provider
	for _, p := range providers {
		if !strings.EqualFold(p.Basic.FirstName, first) || !strings.EqualFold(p.Basic.LastName, last) {
			continue
		}
		if state != "" && !inState(p, state) {
			continue
		}
		if city != "" && !inCity(p, city) {
			continue
		}
		results = append(results, p)
	}

	log.Printf("search first=%q last=%q state=%q city=%q -> %d results", first, last, state, city, len(results))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(searchResponse{ResultCount: len(results), Results: results}); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func inState(p provider, state string) bool {
	for _, a := range p.Addresses {
		if strings.EqualFold(a.State, state) {
			return true
		}
	}
	return false
}

func inCity(p provider, city string) bool {
	for _, a := range p.Addresses {
		if strings.EqualFold(a.City, city) {
			return true
		}
	}
	return false
}
