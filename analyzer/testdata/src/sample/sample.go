package sample

func Alpha() {}

func Beta() int { return 1 }
