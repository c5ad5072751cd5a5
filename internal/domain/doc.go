// Package domain models Ghent drinking-water and public-sanitation points and
// the issue reports citizens file against them.
//
// # Data Source
//
// Points come from the Stad Gent open-data portal as GeoJSON feature
// collections (one export per dataset, e.g. "drinkwaterplekken-gent" and
// "publiek-sanitair-gent"). Each feature has a point geometry with
// coordinates in [longitude, latitude] order and a flat properties object
// whose keys differ per dataset.
//
// # Property Conventions
//
// Identifier fields (priority order, see [IDFields]):
//
//	objectid_1, crmid, objectid, recordid, agent, id
//	Numeric IDs use 0 or "" as the "no ID" sentinel; both count as absent.
//	Numbers keep their literal JSON form, so 42 resolves to "42".
//
// Name fields (see [NameFields]):
//
//	naam, beschrijving, Naam, locatie
//	Toilets carry their name in "beschrijving"; fountains use "naam".
//
// Address fields:
//
//	straatnaam + huisnummer when a street name exists, else adres, else straat.
//
// # ID Resolution
//
// Every feature gets exactly one ResolvedID. When no identifier field is
// usable the ID is derived from the coordinates ("loc-<lat>-<lon>", each
// axis reduced to 8 characters), which is reproducible but coarse. Features
// without coordinates fall back to a random "unknown-<uuid>" ID that changes
// on every load and must not be printed on a sticker. See [ResolveID].
//
// # Reports
//
// A report references a point by ResolvedID and carries a Dutch description
// ("Melding voor: <name> (<address>)"). Reports are insert-only; resubmitting
// creates a second row.
package domain
