package controllers

import "time"

// Now возвращает текущее время. Вынесено в переменную, чтобы в тестах
// можно было зафиксировать дату — расчеты доступности зависят от дня недели.
var Now = time.Now
