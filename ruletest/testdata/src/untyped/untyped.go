package untyped

var Answer int = "forty-two"
