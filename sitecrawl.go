// Package sitecrawl provides a bounded, polite, breadth-first web crawler.
// Starting from a seed URL it visits pages within a single domain, admits each
// URL at most once, respects a page budget and robots.txt rules, and exports
// the visited URLs to a tabular file when the crawl ends.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, robotstxt/, excelize/).
package sitecrawl
