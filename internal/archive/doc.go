// Package archive provides CSV persistence for annual poll rankings.
//
// The archive package manages one CSV file per poll year (<year>.csv) plus a
// consolidated file covering every archived year ("all (<first>-<last>).csv").
// Every file is written to a temporary path in the same directory and renamed
// over the target, so a failed write never truncates an existing archive.
// The default archive location is ./djmag_rankings.
package archive
