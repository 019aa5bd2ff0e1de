package main

import (
	"fmt"
	"log"

	"github.com/muzzletov/arbre"
)

const feed = `<catalog>
	<book id="b1" lang="en">
		<title>The Go Programming Language</title>
		<price>34.99</price>
	</book>
	<book id="b2" lang="fr">
		<title>La Horde du Contrevent</title>
		<price>9.50</price>
	</book>
	<notice>prices include &amp; taxes</notice>
</catalog>`

func main() {
	root := arbre.Parse(feed)

	// repeated siblings key under book, book_1, ...
	catalog := root.Child("catalog")
	for _, key := range catalog.Children {
		fmt.Println(key)
	}

	// path addressing via child keys
	fmt.Println(root.Lookup("catalog", "book_1", "title").Text)

	// entity-decoded text
	fmt.Println(catalog.Child("notice").Text)

	// selector over the whole document
	p := arbre.NewParser(feed)
	for _, title := range p.Query("catalog > book title").Get() {
		fmt.Println(title.Text)
	}

	// xpath, attribute-filtered
	books, err := root.Select("//book[@lang='fr']/price")
	if err != nil {
		log.Fatal(err)
	}
	for _, price := range books {
		fmt.Println(price.Text)
	}
}
