package sqlinline

const QInsertTrip = `--sql 7c0b11ce-3764-44ce-a269-995a06b13531
insert into trips (id, user_email, user_selection, trip_data, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::jsonb, coalesce($3::jsonb, '{}'::jsonb), now(), now())
returning id::text, user_email, user_selection, trip_data, created_at, updated_at;
`

const QSelectTripByID = `--sql c0b0c6a0-3ae1-4c3b-a166-16c0f76de06e
select id::text, user_email, user_selection, trip_data, created_at, updated_at
from trips
where id = $1::uuid
limit 1;
`

// QUpdateTrip replaces only the columns whose parameter is non-null.
const QUpdateTrip = `--sql 89cdfa17-4cb2-424c-91f4-67dd1fc08d4f
update trips
set user_selection = coalesce($2::jsonb, user_selection),
    trip_data = coalesce($3::jsonb, trip_data),
    user_email = coalesce($4::text, user_email),
    updated_at = now()
where id = $1::uuid
returning id::text, user_email, user_selection, trip_data, created_at, updated_at;
`

const QDeleteTrip = `--sql dee79ad1-070d-48e4-aaac-9f7a50d90aeb
delete from trips
where id = $1::uuid;
`

const QListTripsByUser = `--sql 6affb0e0-3316-4a52-a77d-c7b1d0ad30aa
select id::text, user_email, user_selection, trip_data, created_at, updated_at
from trips
where user_email = $1::text
order by created_at desc, id desc;
`
