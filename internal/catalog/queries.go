package catalog

const itemFields = `
    name
    shortName
    width
    height
    avg24hPrice
    basePrice
    lastLowPrice
    changeLast48hPercent
    low24hPrice
    high24hPrice
    iconLink
    wikiLink
    link
    updated
    sellFor {
      vendor {
        name
      }
      price
      currency
    }`

const itemsByNameQuery = `query ItemsByName($name: String!, $gameMode: GameMode) {
  itemsByName(name: $name, gameMode: $gameMode) {` + itemFields + `
  }
}`

const itemNamesQuery = `query ItemNames {
  items {
    name
    shortName
  }
}`

const pingQuery = `query Ping {
  itemsByName(name: "bitcoin") {
    name
  }
}`
