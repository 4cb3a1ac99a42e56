// Mock of the literature index's E-utilities API: esearch.fcgi answers term
// queries with canned record ids, efetch.fcgi returns the article XML. Shapes
// mirror the real endpoints so the client code runs unmodified against it.
package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"log"
	"net/http"
	"strconv"
	"strings"
)

type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	RetMax string   `json:"retmax"`
	IDList []string `json:"idlist"`
}

type articleSet struct {
	XMLName  xml.Name  `xml:"PubmedArticleSet"`
	Articles []article `xml:"PubmedArticle"`
}

type article struct {
	PMID    string   `xml:"MedlineCitation>PMID"`
	Title   string   `xml:"MedlineCitation>Article>ArticleTitle"`
	Journal string   `xml:"MedlineCitation>Article>Journal>Title"`
	Year    string   `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	Authors []author `xml:"MedlineCitation>Article>AuthorList>Author"`
}

type author struct {
	LastName    string `xml:"LastName"`
	ForeName    string `xml:"ForeName"`
	Initials    string `xml:"Initials"`
	Affiliation string `xml:"AffiliationInfo>Affiliation,omitempty"`
}

var articles = map[string]article{
	"38812345": {
		PMID:    "38812345",
		Title:   "Endovascular thrombectomy outcomes in posterior circulation stroke",
		Journal: "Journal of NeuroInterventional Surgery",
		Year:    "2023",
		Authors: []author{
			{LastName: "Joyce", ForeName: "Evan", Initials: "E", Affiliation: "Department of Neurosurgery, Clinical Neurosciences Center, University of Utah, Salt Lake City, Utah, USA"},
			{LastName: "Grandhi", ForeName: "Ramesh", Initials: "R", Affiliation: "Department of Neurosurgery, Clinical Neurosciences Center, University of Utah, Salt Lake City, Utah, USA"},
		},
	},
	"37101844": {
		PMID:    "37101844",
		Title:   "Flow diversion for ruptured wide-necked intracranial aneurysms",
		Journal: "Neurosurgery",
		Year:    "2022",
		Authors: []author{
			{LastName: "Joyce", ForeName: "Evan", Initials: "E", Affiliation: "Department of Neurosurgery, University of Utah, Salt Lake City, Utah, USA"},
			{LastName: "Taussky", ForeName: "Philipp", Initials: "P"},
		},
	},
	"29755098": {
		PMID:    "29755098",
		Title:   "Inhaled corticosteroid adherence in pediatric asthma",
		Journal: "Pediatric Pulmonology",
		Year:    "2018",
		Authors: []author{
			{LastName: "Joyce", ForeName: "Christopher", Initials: "C", Affiliation: "Department of Paediatrics, Trinity College Dublin, Ireland"},
		},
	},
	"31442200": {
		PMID:    "31442200",
		Title:   "Outpatient management of uncomplicated hypertension",
		Journal: "Journal of General Internal Medicine",
		Year:    "2019",
		Authors: []author{
			{LastName: "Roe", ForeName: "Jane", Initials: "J", Affiliation: "Department of Internal Medicine, Provo, Utah, USA"},
		},
	},
}

// searchIndex orders ids newest-first per surname, the way the real index
// answers a date-sorted author query.
var searchIndex = map[string][]string{
	"joyce": {"38812345", "37101844", "29755098"},
	"roe":   {"31442200"},
}

func main() {
	addr := flag.String("addr", ":9002", "listen address")
	flag.Parse()

	http.HandleFunc("/esearch.fcgi", esearch)
	http.HandleFunc("/efetch.fcgi", efetch)

	log.Printf("mock literature index listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func esearch(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("term"))
	retmax, err := strconv.Atoi(r.URL.Query().Get("retmax"))
	if err != nil || retmax <= 0 {
		retmax = 20
	}

	var ids []string
	for surname, hits := range searchIndex {
		if strings.Contains(term, surname) {
			ids = hits
			break
		}
	}

	total := len(ids)
	if len(ids) > retmax {
		ids = ids[:retmax]
	}

	log.Printf("esearch term=%q -> %d of %d ids", term, len(ids), total)

	w.Header().Set("Content-Type", "application/json")
	resp := esearchResponse{Result: esearchResult{
		Count:  strconv.Itoa(total),
		RetMax: strconv.Itoa(len(ids)),
		IDList: ids,
	}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("encode esearch response: %v", err)
	}
}

func efetch(w http.ResponseWriter, r *http.Request) {
	var set articleSet
	for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
		if a, ok := articles[strings.TrimSpace(id)]; ok {
			set.Articles = append(set.Articles, a)
		}
	}

	log.Printf("efetch ids=%q -> %d articles", r.URL.Query().Get("id"), len(set.Articles))

	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		log.Printf("encode efetch response: %v", err)
	}
}
