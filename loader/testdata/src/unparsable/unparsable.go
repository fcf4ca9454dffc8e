package unparsable

func Unparsable( {
